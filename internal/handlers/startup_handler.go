package handlers

import (
	"html/template"
	"net/http"
	"sync"

	"englishexplorer/internal/logger"

	"go.uber.org/zap"
)

// Startup steps in the order the server runs them
const (
	StepConfiguration = "Configuration"
	StepContentPack   = "Content pack"
	StepDatabase      = "Database connection"
	StepMigrations    = "Running migrations"
	StepServer        = "Server ready"
)

// StartupStatus tracks initialization progress and configuration problems
type StartupStatus struct {
	mu       sync.RWMutex
	Ready    bool
	Current  string
	Progress int
	Steps    []StartupStep
	Problems []string
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// NewStartupStatus starts with every step pending
func NewStartupStatus(steps ...string) *StartupStatus {
	if len(steps) == 0 {
		steps = []string{StepConfiguration, StepContentPack, StepDatabase, StepMigrations, StepServer}
	}
	s := &StartupStatus{Current: "Initializing..."}
	for _, name := range steps {
		s.Steps = append(s.Steps, StartupStep{Name: name})
	}
	return s
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.Steps {
		if s.Steps[i].Name == stepName {
			s.Steps[i].Completed = true
		}
		if s.Steps[i].Completed {
			completed++
		}
	}
	s.Progress = (completed * 100) / len(s.Steps)
}

// AddProblem records a configuration problem shown on the home page
func (s *StartupStatus) AddProblem(problem string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Problems = append(s.Problems, problem)
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ready = true
	s.Current = StepServer
	s.Progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Ready
}

type healthResponse struct {
	Ready    bool          `json:"ready"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
	Problems []string      `json:"problems,omitempty"`
}

// Healthz reports readiness. Configuration problems do not make the
// server unhealthy.
func (s *StartupStatus) Healthz(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := healthResponse{
		Ready:    s.Ready,
		Progress: s.Progress,
		Steps:    append([]StartupStep(nil), s.Steps...),
		Problems: append([]string(nil), s.Problems...),
	}
	s.mu.RUnlock()

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>English Explorer - Setup needed</title>
	<style>
		body {
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
			background: linear-gradient(135deg, #4f46e5 0%, #0ea5e9 100%);
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			margin: 0;
			padding: 20px;
		}
		.container {
			background: white;
			border-radius: 20px;
			padding: 40px;
			box-shadow: 0 20px 60px rgba(0,0,0,0.3);
			max-width: 520px;
			width: 100%;
		}
		h1 { color: #333; text-align: center; margin: 0 0 10px; }
		.subtitle { color: #666; text-align: center; margin-bottom: 24px; }
		.problem {
			background: #fef2f2;
			color: #b91c1c;
			border-radius: 10px;
			padding: 12px 16px;
			margin-bottom: 12px;
		}
		.steps { list-style: none; padding: 0; }
		.step { padding: 10px 0; border-bottom: 1px solid #f0f0f0; }
		.step:last-child { border-bottom: none; }
		.step.completed { color: #10b981; }
		code { background: #f3f4f6; padding: 2px 6px; border-radius: 4px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>English Explorer</h1>
		<p class="subtitle">Configuration missing</p>
		{{range .Problems}}
		<div class="problem">{{.}}</div>
		{{end}}
		<p>Set <code>API_KEY</code> in the environment or in a <code>.env</code> file and restart the server.</p>
		<ul class="steps">
			{{range .Steps}}
			<li class="step {{if .Completed}}completed{{end}}">{{if .Completed}}✓{{else}}○{{end}} {{.Name}}</li>
			{{end}}
		</ul>
	</div>
</body>
</html>`))

// ShowConfigMissing renders the blocking setup page
func (s *StartupStatus) ShowConfigMissing(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := statusPage.Execute(w, s); err != nil {
		logger.Error("failed to render status page", zap.Error(err))
	}
}
