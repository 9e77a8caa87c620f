// Package humanid generates the short confirmation codes handed to
// customers. Codes are distinct from internal record IDs: they are meant
// to be read over the phone, so the alphabet drops lookalike characters.
package humanid

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

const (
	prefix       = "BK"
	suffixLength = 5

	// No 0/O, 1/I/L to keep codes unambiguous when spoken or written down.
	alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
)

var codePattern = regexp.MustCompile(`^BK-\d{8}-[23456789ABCDEFGHJKMNPQRSTUVWXYZ]{5}$`)

// New returns a confirmation code of the form BK-YYYYMMDD-XXXXX where the
// date part is the appointment date. The random suffix gives 31^5 (~28.6M)
// combinations per calendar day; collisions are handled by the caller
// regenerating against the ledger's unique index.
func New(date time.Time) (string, error) {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	suffix := make([]byte, suffixLength)
	for i, b := range buf {
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}

	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), suffix), nil
}

// Valid reports whether s looks like a code produced by New.
func Valid(s string) bool {
	return codePattern.MatchString(s)
}
