package orderid

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	validPattern    = regexp.MustCompile(`^[A-Z]{3}\d{2}-\d{4}$`)
	missingDash     = regexp.MustCompile(`^([A-Z]{3}\d{2})(\d+)$`)
	unpaddedPattern = regexp.MustCompile(`^([A-Z]{3}\d{2})-(\d+)$`)
)

var monthNames = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// Normalize turns free text into a canonical key: trimmed, lowercased,
// internal whitespace collapsed to single underscores.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), "_"))
}

// PlaceKey builds the document key for a place under a route.
func PlaceKey(routeID, placeName string) string {
	return Normalize(routeID) + "_" + Normalize(placeName)
}

// ProductKey builds the lookup key for a product (category + name).
func ProductKey(category, name string) string {
	return Normalize(category) + "_" + Normalize(name)
}

// NormalizeOrderID canonicalizes loosely formatted user input:
// "oct04-1", "oct04 1" and "OCT041" all become "OCT04-0001".
// Inputs whose prefix is not three letters + two digits (e.g. "OCT4-1")
// pass through after case and whitespace cleanup only.
// Idempotent: normalizing twice gives the same result.
func NormalizeOrderID(raw string) string {
	if raw == "" {
		return ""
	}
	value := strings.ToUpper(strings.Join(strings.Fields(raw), ""))

	if m := missingDash.FindStringSubmatch(value); m != nil {
		value = m[1] + "-" + m[2]
	}
	if m := unpaddedPattern.FindStringSubmatch(value); m != nil {
		num := m[2]
		for len(num) < 4 {
			num = "0" + num
		}
		value = m[1] + "-" + num
	}
	return value
}

// IsValidOrderID reports whether id matches the canonical AAA99-9999 form.
func IsValidOrderID(id string) bool {
	return validPattern.MatchString(id)
}

// GenerateOrderID builds the canonical id for a sequence number and date,
// e.g. GenerateOrderID(1, oct4) == "OCT04-0001". The caller resolves the
// next available sequence by scanning existing orders for the day prefix.
func GenerateOrderID(sequence int, date time.Time) string {
	prefix := fmt.Sprintf("%s%02d", monthNames[date.Month()-1], date.Day())
	return fmt.Sprintf("%s-%04d", prefix, sequence)
}

// DayPrefix returns the id prefix shared by all orders placed for a date,
// e.g. "OCT04".
func DayPrefix(date time.Time) string {
	return fmt.Sprintf("%s%02d", monthNames[date.Month()-1], date.Day())
}
