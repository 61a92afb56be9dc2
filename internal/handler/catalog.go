package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/storefront/internal/service"
)

// CatalogHandler serves one catalog variant: hoodies or products.
type CatalogHandler struct {
	catalog *service.CatalogService
	noun    string
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	noun := "Hoodie"
	if catalog.Variant().Gallery {
		noun = "Product"
	}
	return &CatalogHandler{catalog: catalog, noun: noun}
}

// HandleList returns the listing, newest first. A non-empty q filters by
// name.
// GET /api/hoodies, /api/products, /api/photos
func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, "list catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(h.catalog.Variant(), items))
}

// HandleGet returns one item.
// GET /api/{kind}/{id}
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	item, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "get catalog item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(h.catalog.Variant(), *item))
}

// HandleCreate creates an item from a multipart form with name,
// description, price and image (or images).
// POST /api/{kind}
// Response: {"message": "...", "id": 1}
func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, r, "parse catalog form", err)
		return
	}
	uploads, err := formUploads(r, "image", "images")
	if err != nil {
		writeError(w, r, "read uploads", err)
		return
	}

	item, err := h.catalog.Create(r.Context(), service.CreateRequest{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		Images:      uploads,
	})
	if err != nil {
		writeError(w, r, "create catalog item", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": h.noun + " added.",
		"id":      item.ID,
	})
}

// HandleUpdate applies any subset of name, description, price and new
// images.
// PATCH /api/{kind}/{id}
func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeError(w, r, "parse catalog form", err)
		return
	}
	uploads, err := formUploads(r, "image", "images")
	if err != nil {
		writeError(w, r, "read uploads", err)
		return
	}

	req := service.UpdateRequest{
		Name:        optionalValue(r, "name"),
		Description: optionalValue(r, "description"),
		Price:       optionalValue(r, "price"),
		Images:      uploads,
	}
	// Blank form fields mean "unchanged", as browsers send every input.
	if req.Price != nil && strings.TrimSpace(*req.Price) == "" {
		req.Price = nil
	}

	item, err := h.catalog.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "update catalog item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": h.noun + " updated.",
		"item":    toItemDTO(h.catalog.Variant(), *item),
	})
}

// HandleDelete removes an item, its photos and their images.
// DELETE /api/{kind}/{id}
func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, "delete catalog item", err)
		return
	}
	writeMessage(w, http.StatusOK, h.noun+" deleted.")
}

// HandleListPhotos returns a gallery in display order.
// GET /api/products/{id}/photos
func (h *CatalogHandler) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	photos, err := h.catalog.Photos(r.Context(), id)
	if err != nil {
		writeError(w, r, "list photos", err)
		return
	}
	writeJSON(w, http.StatusOK, toPhotoDTOs(photos))
}

// HandleAddPhotos appends uploaded images to a gallery.
// POST /api/products/{id}/photos
func (h *CatalogHandler) HandleAddPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeError(w, r, "parse photo form", err)
		return
	}
	uploads, err := formUploads(r, "images", "image")
	if err != nil {
		writeError(w, r, "read uploads", err)
		return
	}

	photos, err := h.catalog.AddPhotos(r.Context(), id, uploads)
	if err != nil {
		writeError(w, r, "add photos", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Photos added.",
		"photos":  toPhotoDTOs(photos),
	})
}

// HandleRemovePhoto deletes one gallery photo.
// DELETE /api/products/{id}/photos/{photoId}
func (h *CatalogHandler) HandleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	photoID, ok := pathID(r, "photoId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid photo id.")
		return
	}
	if err := h.catalog.RemovePhoto(r.Context(), id, photoID); err != nil {
		writeError(w, r, "remove photo", err)
		return
	}
	writeMessage(w, http.StatusOK, "Photo deleted.")
}
