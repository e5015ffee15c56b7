package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	t.Setenv("MINDLAB_TEST_KEY", "set")
	if got := SafeEnv("MINDLAB_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("SafeEnv = %q, want set", got)
	}
	if got := SafeEnv("MINDLAB_TEST_KEY_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv = %q, want fallback", got)
	}
	t.Setenv("MINDLAB_TEST_EMPTY", "")
	if got := SafeEnv("MINDLAB_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("SafeEnv = %q, want fallback for empty value", got)
	}
}
