package virusscan

import (
	"context"
	"testing"
)

func TestNoopScan(t *testing.T) {
	s := NewNoop()
	ctx := context.Background()

	t.Run("always clean", func(t *testing.T) {
		verdict, err := s.Scan(ctx, EICAR, "")
		if err != nil {
			t.Fatalf("Scan error: %v", err)
		}
		if !verdict.IsClean() {
			t.Error("noop scanner must report clean")
		}
		if verdict.Message != "scanning disabled" {
			t.Errorf("Message = %q", verdict.Message)
		}
		if verdict.Duration != 0 {
			t.Errorf("Duration = %v, want 0", verdict.Duration)
		}
	})

	t.Run("filename in message", func(t *testing.T) {
		verdict, _ := s.Scan(ctx, nil, "report.xlsx")
		if verdict.Message != "scanning disabled: report.xlsx" {
			t.Errorf("Message = %q", verdict.Message)
		}
	})

	t.Run("always healthy", func(t *testing.T) {
		ok, err := s.HealthCheck(ctx)
		if err != nil || !ok {
			t.Errorf("HealthCheck = (%v, %v), want (true, nil)", ok, err)
		}
	})

	t.Run("provider tag", func(t *testing.T) {
		if s.Provider() != ProviderNone {
			t.Errorf("Provider = %q", s.Provider())
		}
	})
}

func TestCloudPlaceholder(t *testing.T) {
	s := NewCloud()
	ctx := context.Background()

	if _, err := s.Scan(ctx, nil, ""); !IsUnavailable(err) {
		t.Errorf("Scan error = %v, want UnavailableError", err)
	}
	if ok, err := s.HealthCheck(ctx); ok || !IsUnavailable(err) {
		t.Errorf("HealthCheck = (%v, %v), want unavailability", ok, err)
	}
	if s.Provider() != ProviderCloud {
		t.Errorf("Provider = %q", s.Provider())
	}
}
