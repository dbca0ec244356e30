package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reType  = regexp.MustCompile(`^(buy|sell|rent)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// EduEmail accepts only well-formed addresses whose domain ends in ".edu".
func EduEmail(s string) (string, bool) {
	s, ok := Email(s)
	if !ok {
		return s, false
	}
	return s, strings.HasSuffix(strings.ToLower(s), ".edu")
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (user/listing ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// ListingType validates the buy/sell/rent enum; empty defaults to sell.
func ListingType(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "sell", true
	}
	return s, reType.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// Price parses a non-negative amount.
func Price(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || p < 0 || p > 1_000_000 {
		return 0, false
	}
	return p, true
}

// OptionalPrice parses a price bound; empty input means unbounded.
func OptionalPrice(s string) (*float64, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	p, ok := Price(s)
	if !ok {
		return nil, false
	}
	return &p, true
}

// Text trims a free-text body and rejects empty or oversized input.
func Text(s string, limit int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > limit {
		return "", false
	}
	return s, true
}

// OneOf matches s against allowed values, case-insensitively, returning the canonical spelling.
func OneOf(s string, allowed ...string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return a, true
		}
	}
	return "", false
}

// Password enforces a length window and mixed character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
