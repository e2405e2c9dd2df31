package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"englishexplorer/internal/logger"
	"englishexplorer/internal/security"
	"englishexplorer/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	limiter       *security.RateLimiter
	configMissing func() bool
}

// NewMiddleware creates a new middleware instance. limiter may be nil.
func NewMiddleware(limiter *security.RateLimiter, configMissing func() bool) *Middleware {
	return &Middleware{limiter: limiter, configMissing: configMissing}
}

// RequireContent blocks the request while generation is unconfigured
func (m *Middleware) RequireContent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.configMissing != nil && m.configMissing() {
			respondJSON(w, http.StatusServiceUnavailable, errorResponse{
				Error: ErrConfigMissing,
				Code:  CodeConfigMissing,
			})
			return
		}
		next(w, r)
	}
}

// RateLimit caps requests that spend generation quota
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next(w, r)
			return
		}
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			retry := int(m.limiter.RetryAfter(ip).Seconds() + 0.5)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			logger.Warn("rate limited", zap.String("ip", ip), zap.String("path", r.URL.Path))
			respondWithError(w, http.StatusTooManyRequests, ErrRateLimited, "", nil)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack lets the websocket upgrade take over the connection
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Logging middleware logs HTTP requests and tags each with a request id
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", security.GetClientIP(r)),
			zap.String("request_id", reqID),
		}
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			logger.Debug("request", fields...)
			return
		}
		logger.Info("request", fields...)
	})
}

// decodeJSON reads a size-limited JSON body into dst and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return validation.Struct(dst)
}
