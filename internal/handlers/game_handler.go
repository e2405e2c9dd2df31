package handlers

import (
	"net/http"
	"strconv"

	"englishexplorer/internal/models"
	"englishexplorer/internal/shell"
)

// GameHandler serves the three mini-games
type GameHandler struct {
	shell *shell.Shell
}

// NewGameHandler creates a new game handler
func NewGameHandler(s *shell.Shell) *GameHandler {
	return &GameHandler{shell: s}
}

// StartGame starts the game named in the path, replacing any running one
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseGameKind(r.PathValue("kind"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error(), "", err)
		return
	}

	snap, err := h.shell.StartGame(r.Context(), kind)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// ActiveGame returns the running game's state
func (h *GameHandler) ActiveGame(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.shell.ActiveGame()
	if !ok {
		respondWithDomainError(w, shell.ErrNoActiveGame)
		return
	}
	respondJSON(w, http.StatusOK, eng.Snapshot())
}

// ExitGame stops the running game without XP
func (h *GameHandler) ExitGame(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.shell.ExitGame())
}

// SelectCard flips a matching card
func (h *GameHandler) SelectCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := h.shell.Matching()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.SelectCard(id))
}

// RestartMatching deals a new board
func (h *GameHandler) RestartMatching(w http.ResponseWriter, r *http.Request) {
	g, err := h.shell.Matching()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g.Restart())
}

// SelectToken places a word in the answer
func (h *GameHandler) SelectToken(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := h.shell.Ordering()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.SelectToken(id))
}

// RemoveToken returns a placed word to the pool
func (h *GameHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := h.shell.Ordering()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.RemoveToken(id))
}

// CheckOrdering checks the assembled sentence
func (h *GameHandler) CheckOrdering(w http.ResponseWriter, r *http.Request) {
	g, err := h.shell.Ordering()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.CheckAnswer())
}

// SkipCountdown moves on from a failed sentence
func (h *GameHandler) SkipCountdown(w http.ResponseWriter, r *http.Request) {
	g, err := h.shell.Ordering()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.SkipCountdown())
}

type optionRequest struct {
	Option string `json:"option" validate:"required"`
}

// SelectOption answers the current gap-fill question
func (h *GameHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", err)
		return
	}
	g, err := h.shell.GapFill()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.SelectOption(req.Option))
}

// ContinueGapFill moves on after a wrong answer
func (h *GameHandler) ContinueGapFill(w http.ResponseWriter, r *http.Request) {
	g, err := h.shell.GapFill()
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respond(w)(g.Continue())
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", err)
		return 0, false
	}
	return id, true
}

// respond writes an engine result: the snapshot, or the mapped error
func respond(w http.ResponseWriter) func(any, error) {
	return func(snap any, err error) {
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, snap)
	}
}
