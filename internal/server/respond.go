package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/go-playground/validator/v10"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Code    apperr.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ErrorContext(r.Context(), "Failed to write response", sl.Err(err))
	}
}

// writeError answers with the localized message of err's class. The cause itself stays in the logs.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := apperr.StatusCode(err)

	switch {
	case status >= http.StatusInternalServerError:
		a.log.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, sl.Err(err))
	default:
		a.log.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "code", code, sl.Err(err))
	}
	if code == apperr.CodeUpstream {
		w.Header().Set("Retry-After", "5")
	}

	a.writeCode(w, r, status, code, sl.RedactFields(apperr.Fields(err)))
}

func (a *API) writeCode(w http.ResponseWriter, r *http.Request, status int, code apperr.Code, fields map[string]string) {
	lang := apperr.Language(r.Header.Get("Accept-Language"))
	if len(fields) == 0 {
		fields = nil
	}
	writeJSON(a.log, w, r, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: apperr.Message(lang, code),
		Fields:  fields,
	}})
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// check runs the struct validation rules of dst and returns them as field errors.
func (a *API) check(dst any) error {
	err := a.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Invalid("body", "invalid")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if _, rest, found := strings.Cut(name, "."); found {
			name = rest
		}
		fields[name] = fe.Tag()
	}
	return &apperr.ValidationError{Fields: fields}
}

// decodeJSON reads the request body into dst and validates it.
func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Invalid("body", "max")
		case errors.Is(err, io.EOF):
			return apperr.Invalid("body", "required")
		default:
			return apperr.Invalid("body", "json")
		}
	}
	return a.check(dst)
}
