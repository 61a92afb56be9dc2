package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

const (
	// MaxUploadBytes is the per-file ceiling.
	MaxUploadBytes = 5 << 20
	maxUploadFiles = 10
	maxFormMemory  = 8 << 20
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// parseForm reads a multipart or urlencoded body. A body larger than the
// upload ceiling allows is reported as ErrUploadTooLarge.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadFiles*MaxUploadBytes+(1<<20))
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ErrUploadTooLarge
		}
		return domain.NewFieldError("form", "could not parse form data")
	}
	return nil
}

// formUploads collects the files posted under any of fields. Each file must
// be at most MaxUploadBytes and sniff as PNG, JPEG or WEBP.
func formUploads(r *http.Request, fields ...string) ([]service.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var uploads []service.Upload
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			if len(uploads) == maxUploadFiles {
				return nil, domain.NewFieldError(field, fmt.Sprintf("at most %d images per request", maxUploadFiles))
			}
			u, err := readUpload(fh)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	if fh.Size > MaxUploadBytes {
		return service.Upload{}, domain.ErrUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return service.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return service.Upload{}, domain.ErrUploadTooLarge
	}

	// The declared multipart type is not trusted.
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return service.Upload{}, domain.ErrUploadTypeRejected
	}
	return service.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// optionalValue returns a pointer to the form value when the key was sent.
func optionalValue(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}
