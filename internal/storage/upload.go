package storage

import (
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
)

// AcceptedTypes are the content types accepted for site photos and invoices.
var AcceptedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"application/pdf",
}

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Check validates the upload against maxSize and the accepted content types. The content type
// is normalized in place.
func (u *Upload) Check(maxSize int64) error {
	fields := map[string]string{}

	u.FileName = filepath.Base(strings.TrimSpace(u.FileName))
	if u.FileName == "" || u.FileName == "." || u.FileName == string(filepath.Separator) {
		fields["fileName"] = "required"
	}

	mediaType, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil || !slices.Contains(AcceptedTypes, mediaType) {
		fields["contentType"] = "oneof"
	} else {
		u.ContentType = mediaType
	}

	switch {
	case u.Size <= 0:
		fields["file"] = "required"
	case maxSize > 0 && u.Size > maxSize:
		fields["file"] = "max"
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}
