package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"englishexplorer/internal/content"
	"englishexplorer/internal/models"
	"englishexplorer/internal/progress"
	"englishexplorer/internal/schedule"
	"englishexplorer/internal/security"
	"englishexplorer/internal/shell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStories struct{}

func (stubStories) FetchStory(context.Context) (*models.StoryQuiz, error) {
	return &models.StoryQuiz{
		Title:   "Sam's Saturday",
		Content: "Sam usually plays football. He never watches TV.",
		Questions: []models.Question{
			{ID: 1, Prompt: "What does Sam play?", Options: []string{"Football", "Tennis"}, CorrectOption: "Football"},
			{ID: 2, Prompt: "Does he watch TV?", Options: []string{"Yes", "No"}, CorrectOption: "No"},
		},
	}, nil
}

type fakeArchive struct {
	err error
}

func (f fakeArchive) ListArchived(kind string, limit int) ([]models.ArchivedContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.ArchivedContent{{ID: 1, Kind: kind, Payload: json.RawMessage(`{}`)}}, nil
}

func (f fakeArchive) GetArchived(id int64) (*models.ArchivedContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != 7 {
		return nil, nil
	}
	return &models.ArchivedContent{ID: 7, Kind: "STORY", Title: "Sam's Saturday", Payload: json.RawMessage(`{}`)}, nil
}

func (f fakeArchive) FetchStats() ([]models.FetchStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.FetchStats{{Kind: "STORY", Successes: 3}}, nil
}

type testServer struct {
	handler http.Handler
	status  *StartupStatus
	shell   *shell.Shell
	clock   *schedule.Manual
}

func newTestServer(t *testing.T, configMissing bool, limiter *security.RateLimiter) *testServer {
	t.Helper()
	pack, err := content.DefaultPack()
	require.NoError(t, err)

	clock := schedule.NewManual()
	s := shell.New(shell.Deps{
		Tracker:       progress.NewTracker(),
		Stories:       stubStories{},
		Rounds:        content.NewRounds(content.Unavailable{}, pack),
		Pack:          pack,
		Scheduler:     clock,
		Seed:          7,
		ConfigMissing: configMissing,
	})
	status := NewStartupStatus()
	status.MarkReady()

	return &testServer{
		handler: NewRouter(RouterDeps{Shell: s, Archive: fakeArchive{}, Limiter: limiter, Status: status}),
		status:  status,
		shell:   s,
		clock:   clock,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false, nil)
	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/healthz", "").Code)

	pending := NewStartupStatus()
	pending.CompleteStep(StepConfiguration)
	rec := httptest.NewRecorder()
	pending.Healthz(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 20, decode[healthResponse](t, rec).Progress)
}

func TestHomeShowsShellState(t *testing.T) {
	ts := newTestServer(t, false, nil)

	rec := ts.do(t, "GET", "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[shell.State](t, rec)
	assert.Equal(t, shell.ViewHome, st.View)

	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/nowhere", "").Code)
}

func TestConfigMissingBlocksGameRoutes(t *testing.T) {
	ts := newTestServer(t, true, nil)
	ts.status.AddProblem("API_KEY is not set")

	home := ts.do(t, "GET", "/", "")
	assert.Equal(t, http.StatusServiceUnavailable, home.Code)
	assert.Contains(t, home.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, home.Body.String(), "API_KEY is not set")

	rec := ts.do(t, "POST", "/api/games/matching/start", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeConfigMissing, decode[errorResponse](t, rec).Code)

	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, "GET", "/api/reading", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/metrics", "").Code)
}

func TestNavigate(t *testing.T) {
	ts := newTestServer(t, false, nil)

	rec := ts.do(t, "POST", "/api/shell/navigate/reading", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, shell.ViewReading, decode[shell.State](t, rec).View)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, "POST", "/api/shell/navigate/settings", "").Code)
}

func TestProgress(t *testing.T) {
	ts := newTestServer(t, false, nil)

	rec := ts.do(t, "GET", "/api/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[progressResponse](t, rec)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, models.XPPerLevel, p.HUD.XPToNextLevel)
}

func TestMatchingRoutes(t *testing.T) {
	ts := newTestServer(t, false, nil)

	assert.Equal(t, http.StatusConflict, ts.do(t, "GET", "/api/games/active", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "POST", "/api/games/chess/start", "").Code)

	rec := ts.do(t, "POST", "/api/games/memory/start", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/games/active", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/matching/cards/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/games/matching/cards/first", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "POST", "/api/games/matching/cards/99", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/matching/restart", "").Code)

	// ordering routes refuse while matching runs
	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/api/games/ordering/check", "").Code)

	rec = ts.do(t, "POST", "/api/games/exit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.GameNone, decode[shell.State](t, rec).ActiveGame)
}

func TestOrderingRoutes(t *testing.T) {
	ts := newTestServer(t, false, nil)

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/games/scramble/start", "").Code)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, "POST", "/api/games/ordering/check", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/ordering/tokens/0/select", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/ordering/tokens/0/remove", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "POST", "/api/games/ordering/tokens/42/select", "").Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/api/games/ordering/skip", "").Code)
}

func TestGapFillRoutes(t *testing.T) {
	ts := newTestServer(t, false, nil)

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/games/gapfill/start", "").Code)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/games/gapfill/options", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/games/gapfill/options", `{"answer": "x"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, "POST", "/api/games/gapfill/options", `{"option": "swims"}`).Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/api/games/gapfill/continue", "").Code)
}

func TestGapFillPlayThrough(t *testing.T) {
	ts := newTestServer(t, false, nil)

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/games/gapfill/start", "").Code)

	// first round right, second wrong, third right
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/gapfill/options", `{"option": "plays"}`).Code)
	ts.clock.Advance(1500 * time.Millisecond)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/gapfill/options", `{"option": "not go"}`).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/gapfill/continue", "").Code)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/gapfill/options", `{"option": "Do"}`).Code)
	ts.clock.Advance(1500 * time.Millisecond)

	assert.Equal(t, 40, ts.shell.Progress().XP)
	rec := ts.do(t, "GET", "/api/shell", "")
	assert.Equal(t, models.GameNone, decode[shell.State](t, rec).ActiveGame)
}

func TestReadingRoutes(t *testing.T) {
	ts := newTestServer(t, false, nil)

	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/api/reading/submit", "").Code)

	rec := ts.do(t, "POST", "/api/reading/story", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sam's Saturday", decode[map[string]any](t, rec)["title"])

	assert.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/reading/answers", `{"question_id": 1, "option": "Football"}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/reading/answers", `{"option": "Football"}`).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "POST", "/api/reading/answers", `{"question_id": 9, "option": "Yes"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, "POST", "/api/reading/submit", "").Code)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/reading/answers", `{"question_id": 2, "option": "No"}`).Code)
	rec = ts.do(t, "POST", "/api/reading/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["score"])
	assert.Equal(t, 40, ts.shell.Progress().XP)

	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/reading", "").Code)
}

func TestGenerationIsRateLimited(t *testing.T) {
	ts := newTestServer(t, false, security.NewRateLimiter(1, time.Minute))

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/games/matching/start", "").Code)

	rec := ts.do(t, "POST", "/api/reading/story", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// plain interactions are not limited
	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/shell", "").Code)
}

func TestArchiveRoutes(t *testing.T) {
	ts := newTestServer(t, false, nil)

	rec := ts.do(t, "GET", "/api/archive?kind=STORY&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.ArchivedContent](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "STORY", items[0].Kind)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "GET", "/api/archive?limit=lots", "").Code)

	rec = ts.do(t, "GET", "/api/archive/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[[]models.FetchStats](t, rec)[0].Successes)

	rec = ts.do(t, "GET", "/api/archive/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sam's Saturday", decode[models.ArchivedContent](t, rec).Title)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/api/archive/8", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "GET", "/api/archive/latest", "").Code)

	failing := NewArchiveHandler(fakeArchive{err: errors.New("db down")})
	rec = httptest.NewRecorder()
	failing.FetchStats(rec, httptest.NewRequest("GET", "/api/archive/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingRecordsStatus(t *testing.T) {
	logs := observeLogs(t)
	ts := newTestServer(t, false, nil)

	rec := ts.do(t, "GET", "/api/games/active", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	entries := logs.FilterMessage("request").All()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1].ContextMap()
	assert.Equal(t, "/api/games/active", last["path"])
	assert.EqualValues(t, http.StatusConflict, last["status"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), last["request_id"])
}

func TestLoggingKeepsIncomingRequestID(t *testing.T) {
	ts := newTestServer(t, false, nil)

	req := httptest.NewRequest("GET", "/api/shell", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
