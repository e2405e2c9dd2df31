package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"englishexplorer/internal/fetch"
	"englishexplorer/internal/game"
	"englishexplorer/internal/game/gapfill"
	"englishexplorer/internal/game/matching"
	"englishexplorer/internal/game/ordering"
	"englishexplorer/internal/logger"
	"englishexplorer/internal/reading"
	"englishexplorer/internal/shell"
	"englishexplorer/internal/validation"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Code    string                       `json:"code,omitempty"`
	Details []validation.ValidationError `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondWithError writes userMsg as a JSON error. Server-side failures
// are logged with logMsg, which defaults to userMsg.
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
		} else {
			logger.Debug(logMsg, zap.Int("status", status), zap.Error(err))
		}
	}

	resp := errorResponse{Error: userMsg}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		resp.Details = verrs
	}
	respondJSON(w, status, resp)
}

// respondWithDomainError maps a controller error to a status and writes it
func respondWithDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = ErrInternalServerError
	}
	respondWithError(w, status, msg, "request failed", err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shell.ErrUnknownView),
		errors.Is(err, shell.ErrUnknownGame),
		errors.Is(err, reading.ErrUnknownOption),
		errors.Is(err, gapfill.ErrUnknownOption),
		errors.Is(err, reading.ErrIncompleteAnswers),
		errors.Is(err, ordering.ErrTokensRemaining):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reading.ErrUnknownQuestion),
		errors.Is(err, matching.ErrUnknownCard),
		errors.Is(err, ordering.ErrUnknownToken):
		return http.StatusNotFound
	case errors.Is(err, shell.ErrNoActiveGame),
		errors.Is(err, shell.ErrWrongGame),
		errors.Is(err, reading.ErrNoStory),
		errors.Is(err, reading.ErrAlreadySubmitted),
		errors.Is(err, ordering.ErrNotFailed),
		errors.Is(err, gapfill.ErrNotAwaitingContinue),
		errors.Is(err, game.ErrCompleted),
		errors.Is(err, game.ErrLoading),
		errors.Is(err, fetch.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, reading.ErrStoryUnavailable),
		errors.Is(err, game.ErrNoContent):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
