// Package storage keeps uploaded files and hands out short lived download links for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	provider    = "storage"
	urlAudience = "files"
	dirPerm     = 0o750
)

var ErrInvalidKey = errors.New("invalid storage key")

// FileStorage is the file storage provider. The core only keeps the returned key.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	SignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh storage key for a file of the given task, keeping the file extension.
func NewKey(taskID int64, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join("tasks", strconv.FormatInt(taskID, 10), uuid.NewString()+ext)
}

// LocalStorage stores files below a root directory. Download links are HS256 signed tokens
// naming the key, served by the files endpoint.
type LocalStorage struct {
	root      string
	publicURL string
	secret    []byte
	ttl       time.Duration
}

func NewLocalStorage(root, publicURL, secret string, ttl time.Duration) *LocalStorage {
	return &LocalStorage{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
		secret:    []byte(secret),
		ttl:       ttl,
	}
}

// Put writes r under key. The file appears atomically once fully written.
func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return "", apperr.Upstream(provider, fmt.Errorf("failed to create directory: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", apperr.Upstream(provider, fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op once renamed

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", apperr.Upstream(provider, fmt.Errorf("failed to write file: %w", err))
	}
	if err = tmp.Close(); err != nil {
		return "", apperr.Upstream(provider, fmt.Errorf("failed to close file: %w", err))
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return "", apperr.Upstream(provider, fmt.Errorf("failed to move file into place: %w", err))
	}

	return key, nil
}

// SignedURL returns a download link for key valid for the configured TTL.
func (s *LocalStorage) SignedURL(_ context.Context, key string) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{urlAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download link: %w", err)
	}

	return s.publicURL + "/files/" + key + "?token=" + url.QueryEscape(token), nil
}

// Verify checks that token is a valid, unexpired download link for key.
func (s *LocalStorage) Verify(key, token string) error {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(urlAudience),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return apperr.Forbidden("download: " + err.Error())
	}
	if claims.Subject != key {
		return apperr.Forbidden("download: token issued for another file")
	}
	return nil
}

// Open returns the stored file. The caller closes it.
func (s *LocalStorage) Open(key string) (*os.File, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.NotFound("file", key)
	}
	if err != nil {
		return nil, apperr.Upstream(provider, err)
	}
	return f, nil
}

// Delete removes the file. Deleting a missing file is not an error.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperr.Upstream(provider, fmt.Errorf("failed to delete file: %w", err))
	}
	return nil
}

// path maps key below the root, rejecting keys that would escape it.
func (s *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %w %q", apperr.ErrValidation, ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %w %q", apperr.ErrValidation, ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
