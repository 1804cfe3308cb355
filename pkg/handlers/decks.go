package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens-engine/pkg/apperrors"
	"github.com/pitchlens/pitchlens-engine/pkg/services"
)

// multipartMemoryLimit is the in-memory buffer for multipart parsing; larger
// parts spill to disk.
const multipartMemoryLimit = 8 << 20

// DeckHandler handles deck upload, retrieval, and deletion endpoints.
type DeckHandler struct {
	deckSvc      services.DeckService
	maxFileBytes int64
	logger       *zap.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckSvc services.DeckService, maxFileBytes int64, logger *zap.Logger) *DeckHandler {
	return &DeckHandler{
		deckSvc:      deckSvc,
		maxFileBytes: maxFileBytes,
		logger:       logger.Named("deck-handler"),
	}
}

// RegisterRoutes registers the deck handler's routes on the given mux.
func (h *DeckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /decks/upload", h.Upload)
	mux.HandleFunc("GET /decks", h.List)
	mux.HandleFunc("GET /decks/{id}", h.Get)
	mux.HandleFunc("GET /decks/{id}/assumptions", h.Assumptions)
	mux.HandleFunc("GET /decks/{id}/original", h.Original)
	mux.HandleFunc("DELETE /decks/{id}", h.Delete)
}

// Upload handles POST /decks/upload requests.
// Accepts a multipart form with the PDF in the "deck" field, creates the
// deck, and starts analysis in the background. The response carries the deck
// in status analyzing; clients poll GET /decks/{id} for progress.
func (h *DeckHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileBytes)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		if isBodyTooLarge(err) {
			_ = ErrorResponse(w, http.StatusRequestEntityTooLarge, "PDF exceeds the maximum upload size")
			return
		}
		_ = ErrorResponse(w, http.StatusBadRequest, "No PDF file provided")
		return
	}

	file, header, err := r.FormFile("deck")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "No PDF file provided")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/pdf") {
		_ = ErrorResponse(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			_ = ErrorResponse(w, http.StatusRequestEntityTooLarge, "PDF exceeds the maximum upload size")
			return
		}
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	deck, err := h.deckSvc.Upload(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidDocument):
			_ = ErrorResponse(w, http.StatusBadRequest, "This file doesn't appear to be a valid PDF. Please try a different file.")
		case errors.Is(err, apperrors.ErrInsufficientContent):
			_ = ErrorResponse(w, http.StatusBadRequest, "Could not extract enough text from this PDF. Make sure it contains readable text, not just images.")
		default:
			h.logger.Error("Upload failed", zap.String("file_name", header.Filename), zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to process upload")
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, deck); err != nil {
		h.logger.Error("Failed to encode upload response", zap.Error(err))
	}
}

// List handles GET /decks requests. Decks are returned newest first.
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckSvc.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list decks", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch decks")
		return
	}

	if err := WriteJSON(w, http.StatusOK, decks); err != nil {
		h.logger.Error("Failed to encode decks response", zap.Error(err))
	}
}

// Get handles GET /decks/{id} requests.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDeckID(w, r, h.logger)
	if !ok {
		return
	}

	deck, err := h.deckSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Deck not found")
			return
		}
		h.logger.Error("Failed to get deck", zap.String("deck_id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch deck")
		return
	}

	if err := WriteJSON(w, http.StatusOK, deck); err != nil {
		h.logger.Error("Failed to encode deck response", zap.Error(err))
	}
}

// Assumptions handles GET /decks/{id}/assumptions requests.
// An unknown deck yields an empty array, not a 404; clients poll this
// endpoint while analysis runs.
func (h *DeckHandler) Assumptions(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDeckID(w, r, h.logger)
	if !ok {
		return
	}

	assumptions, err := h.deckSvc.Assumptions(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get assumptions", zap.String("deck_id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch assumptions")
		return
	}

	if err := WriteJSON(w, http.StatusOK, assumptions); err != nil {
		h.logger.Error("Failed to encode assumptions response", zap.Error(err))
	}
}

// Original handles GET /decks/{id}/original requests.
// Redirects to a time-limited download link for the archived PDF. 404 when
// the deck is unknown or archival was disabled at upload time.
func (h *DeckHandler) Original(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDeckID(w, r, h.logger)
	if !ok {
		return
	}

	url, err := h.deckSvc.OriginalURL(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "No archived original for this deck")
			return
		}
		h.logger.Error("Failed to presign original", zap.String("deck_id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch original")
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Delete handles DELETE /decks/{id} requests.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseDeckID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.deckSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Deck not found")
			return
		}
		h.logger.Error("Failed to delete deck", zap.String("deck_id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to delete deck")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// isBodyTooLarge reports whether the error came from the MaxBytesReader cap.
// Multipart parsing sometimes surfaces the cap as a plain message instead of
// a wrapped *http.MaxBytesError.
func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large")
}
