package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"jcurve-lab/internal/orchestrator"
)

const (
	writeWait = 10 * time.Second

	// progressSteps bounds the number of progress frames per run.
	progressSteps = 100
)

type progress struct {
	done, total int
}

// handleStream runs one simulation per connection. The client sends a
// SimulateRequest; the server answers with progress frames followed by a
// single result or error frame, then closes. Sending any further frame,
// or closing the connection, cancels the run.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.RecordRequest(RouteStream, "400")
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	s.metrics.RecordRequest(RouteStream, "101")

	if s.metrics != nil {
		s.metrics.StreamsOpen.Inc()
		defer s.metrics.StreamsOpen.Dec()
	}

	var req SimulateRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.sendError(conn, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := s.checkLimits(req.SimulationParameters); err != nil {
		s.sendError(conn, err)
		return
	}

	ctx, cancel := s.runContext(r.Context())
	defer cancel()

	// The next client frame, or the connection closing, cancels the run.
	go func() {
		if _, _, err := conn.NextReader(); err == nil {
			s.logger.Debug("stream cancelled by client")
		}
		cancel()
	}()

	updates := make(chan progress, progressSteps)
	orch := s.orch.WithProgress(throttle(updates))

	type outcome struct {
		res *orchestrator.Result
		err error
	}
	finished := make(chan outcome, 1)
	go func() {
		res, err := orch.Run(ctx, req.SimulationParameters)
		finished <- outcome{res, err}
	}()

	for {
		select {
		case p := <-updates:
			if err := s.send(conn, StreamMessage{Type: MessageProgress, Done: p.done, Total: p.total}); err != nil {
				cancel()
			}
		case out := <-finished:
			if out.err != nil {
				s.sendError(conn, out.err)
				return
			}
			s.send(conn, StreamMessage{Type: MessageResult, Result: simulateResponse(out.res, req.IncludeTrials)})
			s.close(conn)
			return
		}
	}
}

// throttle returns a progress callback forwarding roughly progressSteps
// updates to ch. Updates are dropped rather than blocking workers.
func throttle(ch chan<- progress) func(done, total int) {
	return func(done, total int) {
		step := max(total/progressSteps, 1)
		if done%step != 0 && done != total {
			return
		}
		select {
		case ch <- progress{done: done, total: total}:
		default:
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("stream write failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) sendError(conn *websocket.Conn, err error) {
	if statusFor(err) >= http.StatusInternalServerError && !isCancel(err) {
		s.logger.Error("stream run failed", zap.Error(err))
	}
	s.send(conn, StreamMessage{Type: MessageError, Error: err.Error()})
	s.close(conn)
}

func (s *Server) close(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
