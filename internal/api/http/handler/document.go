package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
)

const maxDocumentBytes = 10 << 20

// DocumentService is the tier service behind one endpoint.
type DocumentService interface {
	Get(ctx context.Context) (*model.Document, error)
	Put(ctx context.Context, doc *model.Document) error
}

// Document serves GET and PUT of a whole tier document.
type Document struct {
	service DocumentService
	logger  *logger.Logger
}

func NewDocument(service DocumentService, logger *logger.Logger) *Document {
	return &Document{
		service: service,
		logger:  logger,
	}
}

func (h *Document) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Document) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		h.logger.Debug("Document handler: failed to read body", "error", err.Error())
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large")
		return
	}

	doc, err := model.DecodeDocument(body)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.service.Put(r.Context(), doc); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
