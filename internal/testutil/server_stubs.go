package testutil

import (
	"context"
	"net/http"

	"tennis-referee-service/internal/poller"
)

// StubPoller stands in for the catalog poller and counts lifecycle calls.
type StubPoller struct {
	StartCalls int
	StopCalls  int
	Err        error
	StatusVal  poller.Status
}

func (p *StubPoller) Start(context.Context) {
	p.StartCalls++
}

func (p *StubPoller) Stop(context.Context) error {
	p.StopCalls++
	return p.Err
}

func (p *StubPoller) Status() poller.Status {
	return p.StatusVal
}

// StubHTTPServer stands in for the listening HTTP server. ListenAndServe returns
// ListenErr at once. With Unblock set, Shutdown waits for it to close or ctx to end.
type StubHTTPServer struct {
	AddrVal       string
	HandlerVal    http.Handler
	ListenErr     error
	ShutdownErr   error
	Unblock       chan struct{}
	ListenCalls   int
	ShutdownCalls int
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.ListenCalls++
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	s.ShutdownCalls++
	if s.Unblock != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Unblock:
		}
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NotFoundHandler()
	}
	return s.HandlerVal
}
