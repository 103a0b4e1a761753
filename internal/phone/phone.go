// Package phone canonicalizes human-entered phone numbers so that different
// renderings of the same real-world number compare equal. The telephony
// provider, the agent directory, and the customer export all spell numbers
// differently (leading trunk zero, +country prefix, separators), so every
// lookup key in the system goes through Normalize first.
package phone

import "strings"

// Unknown is the sentinel returned for inputs that contain no usable digits.
// Downstream lookups treat it as "no match" instead of failing the pipeline.
const Unknown = "unknown"

// significantDigits is the canonical suffix length. Indian subscriber numbers
// are 10 digits; trunk and country prefixes vary per source.
const significantDigits = 10

// Normalize returns the canonical form of a phone number: separators and the
// leading "+" stripped, trunk "0" and country prefixes dropped, and at most
// the last 10 digits kept. It is a pure function; malformed or empty input
// normalizes to Unknown rather than returning an error.
//
// Examples: "09631084471", "+919631084471" and "91-963-108-4471" all
// normalize to "9631084471".
func Normalize(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	digits := b.String()
	if digits == "" {
		return Unknown
	}

	// Drop a single trunk "0" prefix before suffix-truncating, so "0XXXXXXXXXX"
	// and "91XXXXXXXXXX" agree on short numbers too.
	if len(digits) > significantDigits && strings.HasPrefix(digits, "0") {
		digits = strings.TrimLeft(digits, "0")
		if digits == "" {
			return Unknown
		}
	}
	if len(digits) > significantDigits {
		digits = digits[len(digits)-significantDigits:]
	}
	return digits
}

// Equal reports whether two human-entered numbers refer to the same canonical
// number. Two Unknown values never match.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == Unknown || nb == Unknown {
		return false
	}
	return na == nb
}
