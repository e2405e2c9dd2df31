package handlers

import (
	"net/http"

	"englishexplorer/internal/metrics"
	"englishexplorer/internal/realtime"
	"englishexplorer/internal/security"
	"englishexplorer/internal/shell"
)

// RouterDeps is everything the routes need
type RouterDeps struct {
	Shell   *shell.Shell
	Archive Archive
	Hub     *realtime.Hub
	Limiter *security.RateLimiter
	Status  *StartupStatus
}

// NewRouter registers every route and wraps the mux in request logging
func NewRouter(d RouterDeps) http.Handler {
	if d.Status == nil {
		d.Status = NewStartupStatus()
	}

	mw := NewMiddleware(d.Limiter, d.Shell.ConfigMissing)
	shellHandler := NewShellHandler(d.Shell, d.Status)
	readingHandler := NewReadingHandler(d.Shell)
	gameHandler := NewGameHandler(d.Shell)

	mux := http.NewServeMux()

	// Always available
	mux.HandleFunc("GET /healthz", d.Status.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", shellHandler.Home)

	// Shell
	mux.HandleFunc("GET /api/shell", mw.RequireContent(shellHandler.GetShell))
	mux.HandleFunc("POST /api/shell/navigate/{view}", mw.RequireContent(shellHandler.Navigate))
	mux.HandleFunc("GET /api/progress", mw.RequireContent(shellHandler.GetProgress))

	// Reading quest
	mux.HandleFunc("GET /api/reading", mw.RequireContent(readingHandler.GetReading))
	mux.HandleFunc("POST /api/reading/story", mw.RequireContent(mw.RateLimit(readingHandler.RequestStory)))
	mux.HandleFunc("POST /api/reading/answers", mw.RequireContent(readingHandler.SelectAnswer))
	mux.HandleFunc("POST /api/reading/submit", mw.RequireContent(readingHandler.SubmitQuiz))

	// Games
	mux.HandleFunc("POST /api/games/{kind}/start", mw.RequireContent(mw.RateLimit(gameHandler.StartGame)))
	mux.HandleFunc("GET /api/games/active", mw.RequireContent(gameHandler.ActiveGame))
	mux.HandleFunc("POST /api/games/exit", mw.RequireContent(gameHandler.ExitGame))

	mux.HandleFunc("POST /api/games/matching/cards/{id}", mw.RequireContent(gameHandler.SelectCard))
	mux.HandleFunc("POST /api/games/matching/restart", mw.RequireContent(gameHandler.RestartMatching))

	mux.HandleFunc("POST /api/games/ordering/tokens/{id}/select", mw.RequireContent(gameHandler.SelectToken))
	mux.HandleFunc("POST /api/games/ordering/tokens/{id}/remove", mw.RequireContent(gameHandler.RemoveToken))
	mux.HandleFunc("POST /api/games/ordering/check", mw.RequireContent(gameHandler.CheckOrdering))
	mux.HandleFunc("POST /api/games/ordering/skip", mw.RequireContent(gameHandler.SkipCountdown))

	mux.HandleFunc("POST /api/games/gapfill/options", mw.RequireContent(gameHandler.SelectOption))
	mux.HandleFunc("POST /api/games/gapfill/continue", mw.RequireContent(gameHandler.ContinueGapFill))

	// Archive
	if d.Archive != nil {
		archiveHandler := NewArchiveHandler(d.Archive)
		mux.HandleFunc("GET /api/archive", archiveHandler.ListArchived)
		mux.HandleFunc("GET /api/archive/stats", archiveHandler.FetchStats)
		mux.HandleFunc("GET /api/archive/{id}", archiveHandler.GetArchived)
	}

	// Realtime
	if d.Hub != nil {
		mux.HandleFunc("GET /ws", mw.RequireContent(d.Hub.ServeWS))
	}

	return Logging(mux)
}
