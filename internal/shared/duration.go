package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeLength converts a track length of the form "M:S" or "H:M:S" to "HH:MM:SS".
//
// Each component is zero-padded to two digits and a missing hour becomes "00", so "5:3" gives "00:05:03".
// Empty input stays empty. Anything else wraps [ErrInvalidInput].
func NormalizeLength(length string) (string, error) {
	length = strings.TrimSpace(length)
	if length == "" {
		return "", nil
	}

	parts := strings.Split(length, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("%w: length %q must be M:S or H:M:S", ErrInvalidInput, length)
	}

	for i, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: length %q has an empty component", ErrInvalidInput, length)
		}
		if _, err := strconv.Atoi(p); err != nil || strings.HasPrefix(p, "-") || strings.HasPrefix(p, "+") {
			return "", fmt.Errorf("%w: length %q is not numeric", ErrInvalidInput, length)
		}
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}

	if len(parts) == 2 {
		parts = append([]string{"00"}, parts...)
	}
	return strings.Join(parts, ":"), nil
}

// ParseLength converts "H:M:S" or "M:S" to a [time.Duration].
//
// Values with no colon, more than two colons, or non-numeric parts count as zero.
func ParseLength(length string) time.Duration {
	parts := strings.Split(strings.TrimSpace(length), ":")

	var h, m, s int
	var err1, err2, err3 error
	switch len(parts) {
	case 3:
		h, err1 = strconv.Atoi(parts[0])
		m, err2 = strconv.Atoi(parts[1])
		s, err3 = strconv.Atoi(parts[2])
	case 2:
		m, err2 = strconv.Atoi(parts[0])
		s, err3 = strconv.Atoi(parts[1])
	default:
		return 0
	}
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}

	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// FormatLength renders d as "HH:MM:SS". Hours are not wrapped at 24.
func FormatLength(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
