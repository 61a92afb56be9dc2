package handler

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/msomdec/storefront/internal/domain"
)

// BlobHandler serves stored images under /uploads/. Stores whose URLs point
// elsewhere (object storage) are answered with a redirect.
type BlobHandler struct {
	blobs    domain.BlobStore
	redirect bool
}

// NewBlobHandler creates a new BlobHandler. With redirect set, requests are
// sent to the store's public URL instead of being proxied.
func NewBlobHandler(blobs domain.BlobStore, redirect bool) *BlobHandler {
	return &BlobHandler{blobs: blobs, redirect: redirect}
}

// HandleServe writes blob bytes.
// GET /uploads/{key...}
func (h *BlobHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" || path.Clean("/"+key) != "/"+key {
		writeMessage(w, http.StatusNotFound, "Not found.")
		return
	}
	if h.redirect {
		http.Redirect(w, r, h.blobs.URL(key), http.StatusFound)
		return
	}

	data, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Not found.")
			return
		}
		writeError(w, r, "serve blob", err)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
