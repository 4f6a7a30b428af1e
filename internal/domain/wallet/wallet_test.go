//go:build !integration

package wallet_test

import (
	"errors"
	"testing"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/wallet"
)

func TestParse(t *testing.T) {
	for _, raw := range []string{"EVCPlus", "ZAAD", "SAHAL", "WAAFI"} {
		if _, err := wallet.Parse(raw); err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", raw, err)
		}
	}
	if _, err := wallet.Parse("MPESA"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Parse(MPESA): want ErrInvalidArgument, got %v", err)
	}
	if _, err := wallet.Parse(""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Parse(\"\"): want ErrInvalidArgument, got %v", err)
	}
}

func TestCanonical(t *testing.T) {
	if got := wallet.WalletWAAFI.Canonical(); got != wallet.WalletEVCPlus {
		t.Fatalf("WAAFI.Canonical() = %q, want EVCPlus", got)
	}
	if got := wallet.WalletZAAD.Canonical(); got != wallet.WalletZAAD {
		t.Fatalf("ZAAD.Canonical() = %q, want ZAAD", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		w    wallet.WalletType
		want string
	}{
		{"local number with leading zero", "0611111111", wallet.WalletEVCPlus, "+25261611111111"},
		{"bare subscriber digits", "611111111", wallet.WalletEVCPlus, "+25261611111111"},
		{"spaces and dashes stripped", "061-111 1111", wallet.WalletEVCPlus, "+25261611111111"},
		{"zaad prefix applied", "0712345", wallet.WalletZAAD, "+25263712345"},
		{"sahal prefix applied", "445566", wallet.WalletSAHAL, "+25290445566"},
		{"waafi treated as evcplus", "0611111111", wallet.WalletWAAFI, "+25261611111111"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := wallet.Normalize(tc.raw, tc.w)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q, %s) = %q, want %q", tc.raw, tc.w, got, tc.want)
			}
		})
	}

	t.Run("idempotent on canonical input", func(t *testing.T) {
		once, err := wallet.Normalize("0611111111", wallet.WalletEVCPlus)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := wallet.Normalize(once, wallet.WalletEVCPlus)
		if err != nil {
			t.Fatal(err)
		}
		if once != twice {
			t.Fatalf("second pass changed the number: %q -> %q", once, twice)
		}
	})

	t.Run("provider switch preserves subscriber digits", func(t *testing.T) {
		evc, err := wallet.Normalize("0611111111", wallet.WalletEVCPlus)
		if err != nil {
			t.Fatal(err)
		}
		zaad, err := wallet.Normalize(evc, wallet.WalletZAAD)
		if err != nil {
			t.Fatal(err)
		}
		if zaad != "+25263611111111" {
			t.Fatalf("switch to ZAAD = %q, want +25263611111111", zaad)
		}
	})

	t.Run("empty input rejected", func(t *testing.T) {
		if _, err := wallet.Normalize("", wallet.WalletEVCPlus); !errors.Is(err, domain.ErrPhoneRequired) {
			t.Fatalf("want ErrPhoneRequired, got %v", err)
		}
		if _, err := wallet.Normalize("+-  ", wallet.WalletEVCPlus); !errors.Is(err, domain.ErrPhoneRequired) {
			t.Fatalf("non-digit input: want ErrPhoneRequired, got %v", err)
		}
	})
}

func TestNormalizeCard(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0611111111", "+252611111111"},
		{"+252611111111", "+252611111111"},
		{"252611111111", "+252611111111"},
	}
	for _, tc := range tests {
		got, err := wallet.NormalizeCard(tc.raw)
		if err != nil {
			t.Fatalf("NormalizeCard(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeCard(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, err := wallet.NormalizeCard(""); !errors.Is(err, domain.ErrPhoneRequired) {
		t.Fatalf("empty card phone: want ErrPhoneRequired, got %v", err)
	}
}
