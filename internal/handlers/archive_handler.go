package handlers

import (
	"net/http"
	"strconv"

	"englishexplorer/internal/models"
)

// Archive is the read side of the content archive
type Archive interface {
	ListArchived(kind string, limit int) ([]models.ArchivedContent, error)
	GetArchived(id int64) (*models.ArchivedContent, error)
	FetchStats() ([]models.FetchStats, error)
}

// ArchiveHandler lists generated content
type ArchiveHandler struct {
	archive Archive
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archive Archive) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// ListArchived returns the newest archived content, filtered by ?kind=
func (h *ArchiveHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", err)
			return
		}
		limit = n
	}

	items, err := h.archive.ListArchived(r.URL.Query().Get("kind"), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load archive", "Error listing archive", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// GetArchived returns one archived story or round set
func (h *ArchiveHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", err)
		return
	}

	item, err := h.archive.GetArchived(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load archive", "Error getting archived content", err)
		return
	}
	if item == nil {
		respondWithError(w, http.StatusNotFound, "Archived content not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// FetchStats returns per-kind generation outcomes
func (h *ArchiveHandler) FetchStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.archive.FetchStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load stats", "Error loading fetch stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
