// Package health provides Kubernetes-style liveness and readiness endpoints.
// Readiness checks run concurrently on every probe request with a per-check
// timeout; a single failing check makes the service not ready.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// CheckFunc probes one dependency. It returns nil when the dependency is
// healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Service aggregates readiness checks behind HTTP probe endpoints.
type Service struct {
	mu     sync.Mutex
	checks []check

	// ready gates readiness independently of the checks, used to drain the
	// service before shutdown.
	ready atomic.Bool
}

// New returns a Service that reports not ready until SetReady(true).
func New() *Service {
	return &Service{}
}

// AddReadinessCheck registers a dependency probe under the given name.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the readiness gate.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint reports process liveness. It always succeeds; a wedged
// process simply stops answering.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, http.StatusOK, probeResponse{Status: "ok"})
}

// ReadyEndpoint runs all readiness checks concurrently and reports 503 when
// the gate is closed or any check fails.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeProbe(w, http.StatusServiceUnavailable, probeResponse{Status: "draining"})
		return
	}

	s.mu.Lock()
	checks := append([]check(nil), s.checks...)
	s.mu.Unlock()

	results := make(map[string]string, len(checks))
	var resultsMu sync.Mutex

	g, ctx := errgroup.WithContext(r.Context())
	for _, c := range checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			err := c.fn(checkCtx)

			resultsMu.Lock()
			defer resultsMu.Unlock()
			if err != nil {
				results[c.name] = err.Error()
				return err
			}
			results[c.name] = "ok"
			return nil
		})
	}

	status := http.StatusOK
	resp := probeResponse{Status: "ok", Checks: results}
	if err := g.Wait(); err != nil {
		status = http.StatusServiceUnavailable
		resp.Status = "unhealthy"
	}
	writeProbe(w, status, resp)
}

func writeProbe(w http.ResponseWriter, status int, resp probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
