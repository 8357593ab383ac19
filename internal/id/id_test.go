package id

import (
	"strings"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	got, err := Generate(PrefixProduct)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if !strings.HasPrefix(got, "prd-") {
		t.Errorf("Generate() = %q, want prefix %q", got, "prd-")
	}

	// prefix + dash + 21-char nanoid
	if len(got) != len(PrefixProduct)+1+21 {
		t.Errorf("Generate() length = %d, want %d", len(got), len(PrefixProduct)+1+21)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := Generate(PrefixUser)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if seen[got] {
			t.Fatalf("Generate() returned duplicate ID %q", got)
		}
		seen[got] = true
	}
}

func TestReferralCode(t *testing.T) {
	code, err := ReferralCode()
	if err != nil {
		t.Fatalf("ReferralCode() error: %v", err)
	}

	if len(code) != 8 {
		t.Errorf("ReferralCode() length = %d, want 8", len(code))
	}

	for _, r := range code {
		if !strings.ContainsRune(referralAlphabet, r) {
			t.Errorf("ReferralCode() = %q contains %q outside the allowed alphabet", code, r)
		}
	}
}

func TestOrderNumber(t *testing.T) {
	now := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)

	num, err := OrderNumber(now)
	if err != nil {
		t.Fatalf("OrderNumber() error: %v", err)
	}

	if !strings.HasPrefix(num, "ORD-20260901-") {
		t.Errorf("OrderNumber() = %q, want prefix ORD-20260901-", num)
	}
	if len(num) != len("ORD-20260901-")+6 {
		t.Errorf("OrderNumber() length = %d, want %d", len(num), len("ORD-20260901-")+6)
	}
}

func TestOrderNumber_UsesUTCDate(t *testing.T) {
	// 23:30 in UTC+10 is 13:30 UTC the same day; the date component must come
	// from UTC so order numbers sort consistently across server timezones.
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 9, 2, 5, 0, 0, 0, loc) // 2026-09-01 19:00 UTC

	num, err := OrderNumber(now)
	if err != nil {
		t.Fatalf("OrderNumber() error: %v", err)
	}

	if !strings.HasPrefix(num, "ORD-20260901-") {
		t.Errorf("OrderNumber() = %q, want UTC date 20260901", num)
	}
}
