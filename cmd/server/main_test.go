package main

import "testing"

func TestEnvOr(t *testing.T) {
	t.Setenv("MENTORHUB_TEST_KEY", "set")
	if got := envOr("MENTORHUB_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := envOr("MENTORHUB_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
