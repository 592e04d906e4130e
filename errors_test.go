package virusscan

import (
	"errors"
	"fmt"
	"testing"
)

func TestThreatErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ThreatError
		want string
	}{
		{
			name: "with filename",
			err:  &ThreatError{Filename: "invoice.pdf", Threat: "Eicar-Test-Signature"},
			want: "threat detected in invoice.pdf: Eicar-Test-Signature",
		},
		{
			name: "without filename",
			err:  &ThreatError{Threat: "Eicar-Test-Signature"},
			want: "threat detected: Eicar-Test-Signature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnavailableErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *UnavailableError
		want string
	}{
		{
			name: "without cause",
			err:  &UnavailableError{Reason: "daemon error reply: ERROR"},
			want: "scanner unavailable: daemon error reply: ERROR",
		},
		{
			name: "with cause",
			err:  &UnavailableError{Reason: "connecting to scanner daemon failed", Cause: errors.New("dial tcp")},
			want: "scanner unavailable: connecting to scanner daemon failed: dial tcp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnavailableErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewUnavailableError("reading scan reply timed out", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	err2 := NewUnavailableError("no cause", nil)
	if err2.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestIsThreat(t *testing.T) {
	err := &ThreatError{Filename: "a.bin", Threat: "Win.Test.EICAR_HDB-1"}
	if !IsThreat(err) {
		t.Error("IsThreat should return true")
	}
	if !IsThreat(fmt.Errorf("upload rejected: %w", err)) {
		t.Error("IsThreat should work through wrapping")
	}
	if IsThreat(NewUnavailableError("down", nil)) {
		t.Error("IsThreat should return false for unavailability")
	}
	if IsThreat(errors.New("random error")) {
		t.Error("IsThreat should return false for unrelated errors")
	}
}

func TestIsUnavailable(t *testing.T) {
	err := NewUnavailableError("connection refused", nil)
	if !IsUnavailable(err) {
		t.Error("IsUnavailable should return true")
	}
	if !IsUnavailable(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsUnavailable should work through wrapping")
	}
	if IsUnavailable(&ThreatError{Threat: "x"}) {
		t.Error("IsUnavailable should return false for detections")
	}
}
