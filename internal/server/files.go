package server

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/services/payments"
	"github.com/UnknownOlympus/aeolus/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// readUpload parses a multipart body and returns the file of field. A missing optional file
// yields a nil upload. The returned cleanup releases the parsed form.
func (a *API) readUpload(w http.ResponseWriter, r *http.Request, field string, required bool) (*storage.Upload, func(), error) {
	noop := func() {}
	if a.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, noop, apperr.Invalid(field, "max")
		}
		return nil, noop, apperr.Invalid("body", "multipart")
	}
	cleanup := func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			a.log.WarnContext(r.Context(), "failed to remove multipart temp files", sl.Err(err))
		}
	}

	file, header, err := r.FormFile(field)
	switch {
	case errors.Is(err, http.ErrMissingFile) && !required:
		return nil, cleanup, nil
	case errors.Is(err, http.ErrMissingFile):
		return nil, cleanup, apperr.Invalid(field, "required")
	case err != nil:
		return nil, cleanup, apperr.Invalid(field, "file")
	}

	release := func() {
		_ = file.Close()
		cleanup()
	}
	return &storage.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, release, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// recordPayment accepts JSON, or a multipart form when an invoice file comes along.
func (a *API) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var in payments.Input
	if isMultipart(r) {
		invoice, release, uploadErr := a.readUpload(w, r, "invoice", false)
		defer release()
		if uploadErr != nil {
			a.writeError(w, r, uploadErr)
			return
		}

		req := paymentRequest{
			Currency: r.FormValue("currency"),
			Notes:    r.FormValue("notes"),
		}
		if req.Amount, err = decimal.NewFromString(strings.TrimSpace(r.FormValue("amount"))); err != nil {
			a.writeError(w, r, apperr.Invalid("amount", "number"))
			return
		}
		if err = a.check(req); err != nil {
			a.writeError(w, r, err)
			return
		}
		in = payments.Input{Amount: req.Amount, Currency: req.Currency, Notes: req.Notes, Invoice: invoice}
	} else {
		var req paymentRequest
		if err = a.decodeJSON(w, r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}
		in = payments.Input{Amount: req.Amount, Currency: req.Currency, Notes: req.Notes}
	}

	payment, err := a.svc.Payments.Record(r.Context(), actorOf(r), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusCreated, payment)
}

func (a *API) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	list, err := a.svc.Payments.List(r.Context(), actorOf(r), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, list)
}

func (a *API) paymentSummary(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	summary, err := a.svc.Payments.Summary(r.Context(), actorOf(r), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, summary)
}

func (a *API) attach(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	upload, release, err := a.readUpload(w, r, "file", true)
	defer release()
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	attachment, err := a.svc.Attachments.Attach(r.Context(), actorOf(r), id, *upload)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusCreated, attachment)
}

func (a *API) listAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	list, err := a.svc.Attachments.List(r.Context(), actorOf(r), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, list)
}

func (a *API) attachmentURL(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	link, err := a.svc.Attachments.URL(r.Context(), actorOf(r), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, map[string]string{"url": link})
}

// download serves a stored file to whoever holds a valid signed link for it.
func (a *API) download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := a.files.Verify(key, r.URL.Query().Get("token")); err != nil {
		a.writeError(w, r, err)
		return
	}

	file, err := a.files.Open(key)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		a.writeError(w, r, apperr.Upstream("storage", err))
		return
	}

	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, path.Base(key), info.ModTime(), file)
}
