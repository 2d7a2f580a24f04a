// Package health serves /livez and /readyz backed by periodic checks.
//
// A check flips to failing only after FailureThreshold consecutive errors and
// back to passing after one success, so a single slow ping does not take the
// instance out of rotation.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// Func checks one dependency and returns nil when it is healthy.
type Func func(ctx context.Context) error

// Kind selects the endpoint a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// Check describes a registered check.
type Check struct {
	Name    string
	Kind    Kind
	Timeout time.Duration
	Func    Func
	// FailureThreshold defaults to 3.
	FailureThreshold int
}

type runner struct {
	Check

	passing atomic.Bool
	lastErr atomic.Pointer[string]

	// Owned by the check goroutine.
	fails int
}

func (p *runner) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	if err := p.Func(ctx); err != nil {
		msg := err.Error()
		p.lastErr.Store(&msg)
		p.fails++
		if p.fails >= p.FailureThreshold {
			p.passing.Store(false)
		}
		return
	}
	p.lastErr.Store(nil)
	p.fails = 0
	p.passing.Store(true)
}

func (p *runner) failure() string {
	if msg := p.lastErr.Load(); msg != nil {
		return *msg
	}
	return "check is failing"
}

// Service runs checks and answers health requests. It starts not ready.
type Service struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*runner
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an empty Service.
func New() *Service {
	return &Service{}
}

// Add registers a check. Checks start passing. Add must be called before Start.
func (s *Service) Add(c Check) {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	p := &runner{Check: c}
	p.passing.Store(true)

	s.mu.Lock()
	s.checks = append(s.checks, p)
	s.mu.Unlock()
}

// Start runs every check immediately and then every interval until Stop or
// ctx cancellation.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := slices.Clone(s.checks)
	s.mu.Unlock()

	for _, p := range checks {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				p.run(ctx)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}
}

// Stop cancels the check goroutines and waits for them. It is idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// SetReady marks the instance ready or draining.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the instance is marked ready and all readiness
// checks pass.
func (s *Service) IsReady() bool {
	return s.ready.Load() && len(s.failures(Readiness)) == 0
}

type failure struct {
	name, message string
}

func (s *Service) failures(kind Kind) []failure {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []failure
	for _, p := range s.checks {
		if p.Kind == kind && !p.passing.Load() {
			out = append(out, failure{name: p.Name, message: p.failure()})
		}
	}
	return out
}

// LiveHandler serves /livez.
func (s *Service) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, s.failures(Liveness))
}

// ReadyHandler serves /readyz. A draining instance reports "_readiness".
func (s *Service) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	failures := s.failures(Readiness)
	if !s.ready.Load() {
		failures = append(failures, failure{name: "_readiness", message: "service is not ready"})
	}
	writeStatus(w, failures)
}

// writeStatus writes {"status":"ok"} or {"status":"unhealthy","checks":{...}}.
func writeStatus(w http.ResponseWriter, failures []failure) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.ObjStart()
	e.FieldStart("status")
	if len(failures) == 0 {
		e.Str("ok")
	} else {
		status = http.StatusServiceUnavailable
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		for _, f := range failures {
			e.FieldStart(f.name)
			e.Str(f.message)
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
