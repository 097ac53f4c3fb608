package gateerr

import (
	"errors"
	"testing"
)

func TestClass_IsValid(t *testing.T) {
	tests := []struct {
		class    Class
		expected bool
	}{
		{ClassDiscovery, true},
		{ClassInvocation, true},
		{ClassFix, true},
		{ClassIntegrity, true},
		{ClassInternal, true},
		{Class("BOGUS"), false},
		{Class(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := tt.class.IsValid(); got != tt.expected {
				t.Errorf("Class(%q).IsValid() = %v, want %v", tt.class, got, tt.expected)
			}
		})
	}
}

func TestCode_Class(t *testing.T) {
	tests := []struct {
		code  Code
		class Class
	}{
		{ErrToolNotFound, ClassDiscovery},
		{ErrSpawnFailed, ClassInvocation},
		{ErrValidatorTimeout, ClassInvocation},
		{ErrFixCommandFailed, ClassFix},
		{ErrFileEmptied, ClassIntegrity},
		{ErrInternal, ClassInternal},
		{Code("GATE-UNKNOWN-999"), ClassInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Class(); got != tt.class {
				t.Errorf("Code(%q).Class() = %q, want %q", tt.code, got, tt.class)
			}
		})
	}
}

func TestNew_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := New(ErrSpawnFailed, cause)

	if err.Code != ErrSpawnFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrSpawnFailed)
	}
	if !errors.Is(err, err) {
		t.Errorf("errors.Is should match itself")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestWithContext_Accumulates(t *testing.T) {
	err := New(ErrValidatorTimeout, nil).
		WithContext("validator", "formatter-linter").
		WithContext("timeout_ms", "5000")

	if err.Context["validator"] != "formatter-linter" {
		t.Errorf("missing validator context")
	}
	if err.Context["timeout_ms"] != "5000" {
		t.Errorf("missing timeout_ms context")
	}
}

func TestIsGateError(t *testing.T) {
	if !IsGateError(New(ErrInternal, nil)) {
		t.Errorf("expected GateError to be recognized")
	}
	if IsGateError(errors.New("plain")) {
		t.Errorf("plain error should not be recognized as GateError")
	}
}

func TestGetCode_DefaultsToInternal(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != ErrInternal {
		t.Errorf("GetCode(plain) = %q, want %q", got, ErrInternal)
	}
	if got := GetCode(New(ErrToolNotFound, nil)); got != ErrToolNotFound {
		t.Errorf("GetCode(gate error) = %q, want %q", got, ErrToolNotFound)
	}
}
