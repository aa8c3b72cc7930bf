package confparse

import (
	"strconv"
	"strings"
)

// Literal conversion helpers. All of them are lenient: text that cannot be
// interpreted yields the zero value, never an error.

// sizeUnits maps a case-insensitive unit suffix to its byte multiplier.
// Units are powers of 1024.
var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1024,
	"KB": 1024,
	"M":  1024 * 1024,
	"MB": 1024 * 1024,
	"G":  1024 * 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
	"T":  1024 * 1024 * 1024 * 1024,
	"TB": 1024 * 1024 * 1024 * 1024,
}

// parseSize converts a size literal like "8MB", "512k" or "1048576" to bytes.
// A bare number is bytes; unparsable text yields 0.
func parseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(unquote(s)))
	if s == "" {
		return 0
	}

	num, unit := splitNumericPrefix(s)
	mult, ok := sizeUnits[unit]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0
	}
	return n * mult
}

// parseDurationSeconds converts a duration literal like "2m", "500ms" or "90"
// to whole seconds using truncating arithmetic. A bare number is seconds;
// unparsable text yields 0.
func parseDurationSeconds(s string) int64 {
	s = strings.ToLower(strings.TrimSpace(unquote(s)))
	if s == "" {
		return 0
	}

	num, unit := splitNumericPrefix(s)
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0
	}

	switch unit {
	case "":
		return n
	case "ns":
		return n / 1_000_000_000
	case "us":
		return n / 1_000_000
	case "ms":
		return n / 1000
	case "s":
		return n
	case "m":
		return n * 60
	case "h":
		return n * 3600
	default:
		return 0
	}
}

// splitNumericPrefix splits "8MB" into ("8", "MB"). A leading sign belongs to
// the numeric part.
func splitNumericPrefix(s string) (num, suffix string) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// parseBool accepts true/enabled/yes/1 case-insensitively as true; everything
// else is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(unquote(s))) {
	case "true", "enabled", "yes", "1":
		return true
	default:
		return false
	}
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// parseInt is a lenient integer parse; unparsable text yields 0.
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(unquote(s)))
	if err != nil {
		return 0
	}
	return n
}
