// Package wallet centralizes mobile-money provider metadata and phone
// normalization. Every payment surface must go through this package; the
// provider prefix table lives here and nowhere else.
package wallet

import (
	"strings"

	"academy-payments/internal/domain"
)

// WalletType identifies a mobile-money network.
type WalletType string

const (
	WalletEVCPlus WalletType = "EVCPlus"
	WalletZAAD    WalletType = "ZAAD"
	WalletSAHAL   WalletType = "SAHAL"
	// WalletWAAFI is accepted from legacy clients and treated as EVCPlus.
	WalletWAAFI WalletType = "WAAFI"
)

// CountryCode is the dialing code all canonical numbers carry.
const CountryCode = "+252"

// prefixes maps each provider to its two-digit network prefix.
var prefixes = map[WalletType]string{
	WalletEVCPlus: "61",
	WalletZAAD:    "63",
	WalletSAHAL:   "90",
	WalletWAAFI:   "61",
}

// Parse validates a raw wallet identifier.
func Parse(s string) (WalletType, error) {
	w := WalletType(s)
	if _, ok := prefixes[w]; !ok {
		return "", domain.ErrInvalidArgument
	}
	return w, nil
}

// Prefix returns the two-digit network prefix for w.
func (w WalletType) Prefix() (string, error) {
	p, ok := prefixes[w]
	if !ok {
		return "", domain.ErrInvalidArgument
	}
	return p, nil
}

// Canonical maps legacy aliases to the wallet type that is stored and emitted.
func (w WalletType) Canonical() WalletType {
	if w == WalletWAAFI {
		return WalletEVCPlus
	}
	return w
}

// Normalize turns a raw user-entered phone number into the canonical form
// CountryCode + provider prefix + subscriber digits.
//
// If the input is already canonical (possibly for a different provider), the
// subscriber digits are recovered by skipping the country code and any known
// two-digit prefix, so switching providers neither drops nor duplicates digits.
func Normalize(raw string, w WalletType) (string, error) {
	prefix, err := w.Prefix()
	if err != nil {
		return "", err
	}
	sub := subscriberDigits(raw)
	if sub == "" {
		return "", domain.ErrPhoneRequired
	}
	return CountryCode + prefix + sub, nil
}

// NormalizeCard canonicalizes a phone number for card payments: country-code
// defaulting only, no provider prefix applied.
func NormalizeCard(raw string) (string, error) {
	cleaned := clean(raw)
	digits := strings.TrimPrefix(cleaned, "+")
	if rest, ok := strings.CutPrefix(digits, "252"); ok {
		digits = rest
	} else {
		digits = strings.TrimLeft(digits, "0")
	}
	if digits == "" {
		return "", domain.ErrPhoneRequired
	}
	return CountryCode + digits, nil
}

// subscriberDigits recovers the bare subscriber number from raw input, which
// may be free text, a local number with leading zeros, or an already canonical
// number carrying a country code and a provider prefix.
func subscriberDigits(raw string) string {
	cleaned := clean(raw)
	digits := strings.TrimPrefix(cleaned, "+")
	if rest, ok := strings.CutPrefix(digits, "252"); ok {
		// Skip a previously applied network prefix, whichever provider it was.
		for _, p := range prefixes {
			if after, ok := strings.CutPrefix(rest, p); ok {
				return after
			}
		}
		return rest
	}
	return strings.TrimLeft(digits, "0")
}

// clean strips everything except digits and a leading plus sign.
func clean(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
