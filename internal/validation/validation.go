package validation

import (
	"errors"
	"strings"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// EmptyCityMessage is the inline message shown next to the input field.
const EmptyCityMessage = "Please enter a city name."

// ValidateCity trims the input and rejects empty results.
// Returns the trimmed string; any other content is left for the provider to judge.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrCityEmpty
	}
	return s, nil
}

// Message maps a validation error to the text rendered inline. Returns "" for nil.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCityEmpty):
		return EmptyCityMessage
	default:
		return "Invalid city name."
	}
}
