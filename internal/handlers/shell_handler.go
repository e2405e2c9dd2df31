package handlers

import (
	"net/http"

	"englishexplorer/internal/models"
	"englishexplorer/internal/shell"
)

// ShellHandler exposes views and progress
type ShellHandler struct {
	shell  *shell.Shell
	status *StartupStatus
}

// NewShellHandler creates a new shell handler
func NewShellHandler(s *shell.Shell, status *StartupStatus) *ShellHandler {
	return &ShellHandler{shell: s, status: status}
}

// Home shows the shell, or the setup page when generation is unconfigured
func (h *ShellHandler) Home(w http.ResponseWriter, r *http.Request) {
	if h.shell.ConfigMissing() {
		h.status.ShowConfigMissing(w, r)
		return
	}
	respondJSON(w, http.StatusOK, h.shell.State())
}

// GetShell returns the view, active game and HUD
func (h *ShellHandler) GetShell(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.shell.State())
}

// Navigate switches views
func (h *ShellHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	view, err := shell.ParseView(r.PathValue("view"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.shell.Navigate(view))
}

type progressResponse struct {
	models.ProgressState
	HUD models.HUD `json:"hud"`
}

// GetProgress returns raw XP and the HUD summary
func (h *ShellHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	p := h.shell.Progress()
	respondJSON(w, http.StatusOK, progressResponse{ProgressState: p, HUD: p.HUD()})
}
