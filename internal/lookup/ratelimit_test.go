package lookup

import (
	"context"
	"strings"
	"testing"
)

type stubService struct {
	calls  int
	result *Result
	err    error
}

func (s *stubService) Lookup(ctx context.Context, req Request) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubService) Name() string {
	return "stub"
}

func TestRateLimitedServiceDelegates(t *testing.T) {
	stub := &stubService{result: &Result{City: "London", Units: "Celsius"}}
	limited := NewRateLimitedService(stub, 100, 10)

	result, err := limited.Lookup(context.Background(), Request{City: "London"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.City != "London" {
		t.Errorf("Expected delegated result, got %+v", result)
	}
	if stub.calls != 1 {
		t.Errorf("Expected 1 delegated call, got %d", stub.calls)
	}
}

func TestRateLimitedServiceName(t *testing.T) {
	limited := NewRateLimitedService(&stubService{}, 1, 1)
	if !strings.Contains(limited.Name(), "stub") {
		t.Errorf("Expected wrapped name to include the inner service, got %q", limited.Name())
	}
}

func TestRateLimitedServiceCanceledContext(t *testing.T) {
	stub := &stubService{}
	// Zero burst means Wait can never succeed immediately.
	limited := NewRateLimitedService(stub, 0.001, 1)

	ctx, cancel := context.WithCancel(context.Background())

	// Drain the single burst token, then cancel.
	if _, err := limited.Lookup(ctx, Request{City: "London"}); err != nil {
		t.Fatalf("First lookup should pass the limiter: %v", err)
	}
	cancel()

	if _, err := limited.Lookup(ctx, Request{City: "London"}); err == nil {
		t.Error("Expected an error once the context is canceled")
	}
	if stub.calls != 1 {
		t.Errorf("Expected the second call to be blocked by the limiter, got %d calls", stub.calls)
	}
}
