package httpapi

import (
	"net/http"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"github.com/SWE-Jahidul/amar-hisab-back/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// names are the labels one record kind uses in responses.
type names struct {
	display  string
	singular string
	plural   string
}

type recordHandlers[T models.Record, P models.Patch[T]] struct {
	svc    RecordService[T, P]
	names  names
	logger logging.Logger
}

// recordRoutes registers the CRUD routes of one kind on a subrouter.
func recordRoutes[T models.Record, P models.Patch[T]](r chi.Router, svc RecordService[T, P], n names, logger logging.Logger) {
	h := &recordHandlers[T, P]{svc: svc, names: n, logger: logger}
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *recordHandlers[T, P]) fail(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusNotFound:
		writeFailure(w, status, h.names.display+" not found", nil)
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		writeFailure(w, status, "Invalid request", err)
	default:
		h.logger.Error(req.Context(), "request failed", "path", req.URL.Path, "error", err)
		writeFailure(w, status, "Server error", err)
	}
}

func (h *recordHandlers[T, P]) list(w http.ResponseWriter, req *http.Request) {
	recs, err := h.svc.List(req.Context(), getUserID(req.Context()))
	if err != nil {
		h.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		h.names.plural: recs,
		"total":        len(recs),
	})
}

func (h *recordHandlers[T, P]) get(w http.ResponseWriter, req *http.Request) {
	rec, err := h.svc.Get(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"))
	if err != nil {
		h.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		h.names.singular: rec,
	})
}

func (h *recordHandlers[T, P]) create(w http.ResponseWriter, req *http.Request) {
	var p P
	if err := decodeBody(req.Body, &p); err != nil {
		h.fail(w, req, err)
		return
	}
	rec, err := h.svc.Create(req.Context(), getUserID(req.Context()), p)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"message":        h.names.display + " added successfully",
		h.names.singular: rec,
	})
}

func (h *recordHandlers[T, P]) update(w http.ResponseWriter, req *http.Request) {
	var p P
	if err := decodeBody(req.Body, &p); err != nil {
		h.fail(w, req, err)
		return
	}
	rec, err := h.svc.Update(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"), p)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        h.names.display + " updated successfully",
		h.names.singular: rec,
	})
}

func (h *recordHandlers[T, P]) delete(w http.ResponseWriter, req *http.Request) {
	if err := h.svc.Delete(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id")); err != nil {
		h.fail(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": h.names.display + " deleted successfully",
	})
}
