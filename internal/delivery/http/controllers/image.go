package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	h "eventease/internal/delivery/http/helpers"
	"eventease/internal/domain"
)

const (
	imageFormField = "image"
	maxImageBytes  = 5 << 20
)

// readImage reads the "image" multipart file from r. On failure it writes a 400
// and returns ok=false; the caller must close the returned file otherwise.
func readImage(w http.ResponseWriter, r *http.Request) (multipart.File, domain.ImageUpload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodeBadRequest, "image is too large")
			return nil, domain.ImageUpload{}, false
		}
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "expected multipart/form-data with an image field")
		return nil, domain.ImageUpload{}, false
	}
	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "image is required")
		return nil, domain.ImageUpload{}, false
	}
	if header.Size > maxImageBytes {
		_ = file.Close()
		h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodeBadRequest, "image is too large")
		return nil, domain.ImageUpload{}, false
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, 0); err != nil {
			_ = file.Close()
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "unreadable image")
			return nil, domain.ImageUpload{}, false
		}
	}
	return file, domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        file,
	}, true
}
