package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpointIsNoop(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "smartbox-server", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.MeterProvider == nil {
		t.Fatal("MeterProvider should not be nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "http://", "smartbox-server", false); err == nil {
		t.Error("expected error for endpoint without host")
	}
}
