package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// InputError reports a malformed command argument.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseDuration parses a timer duration.
//
// A bare integer is seconds, an "s" suffix is seconds and an "m" suffix is
// minutes. Anything else, including zero, is rejected.
func ParseDuration(s string) (time.Duration, error) {
	raw := s
	s = strings.TrimSpace(s)

	unit := time.Second
	switch {
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "s"):
		s = strings.TrimSuffix(s, "s")
	}

	if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, &InputError{Field: "duration", Value: raw, Reason: "want N, Ns or Nm"}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &InputError{Field: "duration", Value: raw, Reason: "out of range"}
	}
	if n == 0 {
		return 0, &InputError{Field: "duration", Value: raw, Reason: "must be positive"}
	}
	return time.Duration(n) * unit, nil
}

// splitStartArgs separates an optional leading duration from the
// description words. A first word starting with a digit must be a valid
// duration.
func splitStartArgs(args []string) (time.Duration, string, error) {
	if len(args) == 0 {
		return 0, "", nil
	}
	first := args[0]
	if first != "" && unicode.IsDigit(rune(first[0])) {
		d, err := ParseDuration(first)
		if err != nil {
			return 0, "", err
		}
		return d, strings.Join(args[1:], " "), nil
	}
	return 0, strings.Join(args, " "), nil
}

// parseID parses a slice ID argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &InputError{Field: "id", Value: s, Reason: "want a positive integer"}
	}
	return id, nil
}

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime parses an absolute time in loc. Accepted forms are RFC 3339,
// "YYYY-MM-DD HH:MM[:SS]" (a 'T' separator also works) and "YYYY-MM-DD".
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InputError{Field: "time", Value: s, Reason: "want YYYY-MM-DD[ HH:MM[:SS]] or RFC 3339"}
}

// splitTags flattens repeated and comma-separated tag flags.
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	}
	return tags
}
