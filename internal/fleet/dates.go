package fleet

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD". nil or blank gives nil.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *s)
	}
	return &t, nil
}

// ApplyDate overwrites *dst when s is non-nil; an empty string clears the date.
func ApplyDate(dst **time.Time, s *string) error {
	if s == nil {
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}
