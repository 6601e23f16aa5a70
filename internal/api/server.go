// Package api exposes schedules, simulations and metrics over HTTP, with
// a websocket endpoint streaming simulation progress.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/logger"
	"jcurve-lab/internal/observability"
	"jcurve-lab/internal/orchestrator"
)

// Route names used as metric labels.
const (
	RouteHealth   = "health"
	RouteSchedule = "schedule"
	RouteSimulate = "simulate"
	RouteMetrics  = "metrics"
	RouteStream   = "stream"
)

// Per-request run bounds.
const (
	// DefaultMaxSimulations caps n_simulations.
	DefaultMaxSimulations = 100000
	// DefaultMaxCells caps years * n_simulations, the number of cash-flow
	// cells a run allocates.
	DefaultMaxCells = 10_000_000
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// Options contains configuration for creating a Server.
type Options struct {
	Orchestrator   *orchestrator.Orchestrator
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	MetricsHandler http.Handler  // mounted at /metrics when set
	MaxSimulations int           // <= 0 uses DefaultMaxSimulations
	MaxCells       int           // <= 0 uses DefaultMaxCells
	Timeout        time.Duration // per-run limit, 0 = none
}

// Server serves the HTTP API.
type Server struct {
	orch           *orchestrator.Orchestrator
	logger         *zap.Logger
	metrics        *observability.Metrics
	metricsHandler http.Handler
	maxSimulations int
	maxCells       int
	timeout        time.Duration
	upgrader       websocket.Upgrader
}

// NewServer creates an API server.
func NewServer(opts Options) *Server {
	orch := opts.Orchestrator
	if orch == nil {
		orch = orchestrator.New(orchestrator.Options{Logger: opts.Logger, Metrics: opts.Metrics})
	}
	maxSims := opts.MaxSimulations
	if maxSims <= 0 {
		maxSims = DefaultMaxSimulations
	}
	maxCells := opts.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	return &Server{
		orch:           orch,
		logger:         logger.WithComponent(logger.OrNop(opts.Logger), "api"),
		metrics:        opts.Metrics,
		metricsHandler: opts.MetricsHandler,
		maxSimulations: maxSims,
		maxCells:       maxCells,
		timeout:        opts.Timeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/schedule", s.handleSchedule)
	mux.HandleFunc("POST /api/v1/simulate", s.handleSimulate)
	mux.HandleFunc("POST /api/v1/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/v1/simulate/stream", s.handleStream)

	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, RouteHealth, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, RouteSchedule, err)
		return
	}
	mode, err := domain.ParseScheduleMode(req.Mode)
	if err != nil {
		s.writeError(w, RouteSchedule, err)
		return
	}

	if req.Years > s.maxCells {
		s.writeError(w, RouteSchedule, fmt.Errorf("%w: years %d exceeds limit %d",
			domain.ErrValidation, req.Years, s.maxCells))
		return
	}

	set, err := s.orch.Scenarios(mode, req.Years, req.Commitments, req.PeakDrawdownYear)
	if err != nil {
		s.writeError(w, RouteSchedule, err)
		return
	}

	s.writeJSON(w, RouteSchedule, http.StatusOK, ScheduleResponse{
		Mode:      set.Mode,
		Scenarios: scenarioResponses(set.Schedules, set.Metrics),
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, RouteSimulate, err)
		return
	}
	if err := s.checkLimits(req.SimulationParameters); err != nil {
		s.writeError(w, RouteSimulate, err)
		return
	}

	ctx, cancel := s.runContext(r.Context())
	defer cancel()

	res, err := s.orch.Run(ctx, req.SimulationParameters)
	if err != nil {
		s.writeError(w, RouteSimulate, err)
		return
	}

	s.writeJSON(w, RouteSimulate, http.StatusOK, simulateResponse(res, req.IncludeTrials))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, RouteMetrics, err)
		return
	}
	if len(req.CashFlows) == 0 {
		s.writeError(w, RouteMetrics, fmt.Errorf("%w: cash_flows is empty", domain.ErrValidation))
		return
	}

	s.writeJSON(w, RouteMetrics, http.StatusOK, s.orch.Calculator().Evaluate(req.CashFlows))
}

func (s *Server) checkLimits(params domain.SimulationParameters) error {
	if params.NSimulations > s.maxSimulations {
		return fmt.Errorf("%w: n_simulations %d exceeds limit %d",
			domain.ErrValidation, params.NSimulations, s.maxSimulations)
	}
	// Divide rather than multiply so huge inputs cannot overflow.
	if params.Years > 0 && params.NSimulations > 0 && params.Years > s.maxCells/params.NSimulations {
		return fmt.Errorf("%w: years * n_simulations (%d * %d) exceeds limit %d",
			domain.ErrValidation, params.Years, params.NSimulations, s.maxCells)
	}
	return nil
}

func (s *Server) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(parent, s.timeout)
	}
	return context.WithCancel(parent)
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, route string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("route", route), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("route", route), zap.Error(err))
	}
	s.writeJSON(w, route, code, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, code int, body any) {
	s.metrics.RecordRequest(route, strconv.Itoa(code))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("write response", zap.String("route", route), zap.Error(err))
	}
}
