package services_test

import (
	"errors"
	"strings"
	"testing"

	"kachef/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternal, "snapshot", "download", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"snapshot", "download", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"missing manifest", services.Wrap(services.ErrNotFound, "snapshot", "list", "no export", nil), true},
		{"corrupt map", services.Wrap(services.ErrCorrupt, "metadata", "load", "bad json", errors.New("eof")), true},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "bad format", nil), true},
		{"transient", services.Wrap(services.ErrTransient, "kaapi", "get", "502", nil), false},
		{"plain", errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := services.IsFatal(tt.err); got != tt.want {
			t.Errorf("%s: IsFatal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHintDefaults(t *testing.T) {
	if services.Hint(nil) != "" {
		t.Fatal("expected empty hint for nil")
	}
	if hint := services.Hint(errors.New("x")); hint != "check logs for details" {
		t.Fatalf("unexpected hint %q", hint)
	}
}
