package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_AllowAndRemaining(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("fourth attempt should be blocked")
	}
	if got := l.Remaining("1.2.3.4"); got != 0 {
		t.Errorf("Remaining: got %d, want 0", got)
	}

	// Other keys are independent.
	if !l.Allow("5.6.7.8") {
		t.Error("different key should be allowed")
	}
	if got := l.Remaining("unused"); got != 3 {
		t.Errorf("Remaining for fresh key: got %d, want 3", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("k") {
		t.Fatal("first attempt should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second attempt should be blocked")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("attempt after Reset should be allowed")
	}
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := New(1, 20*time.Millisecond)

	if !l.Allow("k") {
		t.Fatal("first attempt should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second attempt in window should be blocked")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("attempt after window expiry should be allowed")
	}
}

func TestSignInLimiter_PerEmail(t *testing.T) {
	sl := NewSignInLimiterWithConfig(100, time.Minute, 2, time.Minute)

	if !sl.Allow("1.1.1.1", "Ana@Example.com") {
		t.Fatal("first attempt should be allowed")
	}
	if !sl.Allow("2.2.2.2", "ana@example.com ") {
		t.Fatal("second attempt should be allowed")
	}
	// Email key is normalized, so a third attempt from any IP is blocked.
	if sl.Allow("3.3.3.3", "ANA@EXAMPLE.COM") {
		t.Error("third attempt for same email should be blocked")
	}

	sl.ResetEmail("ana@example.com")
	if !sl.Allow("4.4.4.4", "ana@example.com") {
		t.Error("attempt after ResetEmail should be allowed")
	}
}

func TestSignInLimiter_PerIP(t *testing.T) {
	sl := NewSignInLimiterWithConfig(2, time.Minute, 100, time.Minute)

	if !sl.Allow("9.9.9.9", "a@example.com") {
		t.Fatal("first attempt should be allowed")
	}
	if !sl.Allow("9.9.9.9", "b@example.com") {
		t.Fatal("second attempt should be allowed")
	}
	if sl.Allow("9.9.9.9", "c@example.com") {
		t.Error("third attempt from same IP should be blocked")
	}
}
