package handlers

import (
	"net/http"

	"englishexplorer/internal/shell"
)

// ReadingHandler serves the reading quest
type ReadingHandler struct {
	shell *shell.Shell
}

// NewReadingHandler creates a new reading handler
func NewReadingHandler(s *shell.Shell) *ReadingHandler {
	return &ReadingHandler{shell: s}
}

// GetReading returns the session with its highlighted passage
func (h *ReadingHandler) GetReading(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.shell.Reading().State())
}

// RequestStory generates a new story, replacing the current one
func (h *ReadingHandler) RequestStory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.shell.RequestStory(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type answerRequest struct {
	QuestionID *int   `json:"question_id" validate:"required"`
	Option     string `json:"option" validate:"required"`
}

// SelectAnswer records the chosen option for a question
func (h *ReadingHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}

	snap, err := h.shell.Reading().SelectAnswer(*req.QuestionID, req.Option)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// SubmitQuiz scores the answers
func (h *ReadingHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	snap, err := h.shell.Reading().SubmitQuiz()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
