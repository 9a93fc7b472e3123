package utils

import (
	"strings"
	"testing"
)

func TestNewBookingNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n, err := NewBookingNumber()
		if err != nil {
			t.Fatalf("NewBookingNumber: %v", err)
		}
		if len(n) != BookingNumberLen {
			t.Fatalf("length = %d, want %d (%q)", len(n), BookingNumberLen, n)
		}
		for _, r := range n {
			if !strings.ContainsRune(bookingAlphabet, r) {
				t.Fatalf("character %q outside alphabet in %q", r, n)
			}
		}
		seen[n] = true
	}
	// 100 draws from a 32^8 space colliding down to a handful would
	// mean the generator is broken.
	if len(seen) < 95 {
		t.Fatalf("only %d distinct numbers out of 100", len(seen))
	}
}
