// internal/ledger/validate.go
package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Validation codes carried by ValidationError.
const (
	CodeEventTypeRequired    = "event_type_required"
	CodeDateRequired         = "date_required"
	CodeDateNotNumeric       = "date_not_numeric"
	CodeDateOutOfRange       = "date_out_of_range"
	CodeEmptySelection       = "empty_selection"
	CodeUnknownResource      = "unknown_resource"
	CodeInsufficientResource = "insufficient_resource"
	CodeInvalidIndex         = "invalid_index"
)

// ValidateType rejects an empty type or the unselected placeholder and
// returns the type without surrounding spaces.
func ValidateType(eventType, placeholder string) (string, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" || eventType == placeholder {
		return "", invalid("tipo", CodeEventTypeRequired, ErrEventTypeRequired, "")
	}
	return eventType, nil
}

// ParseDate checks that every field is present, numeric and within range.
func ParseDate(day, month, year string) (Date, error) {
	day, month, year = strings.TrimSpace(day), strings.TrimSpace(month), strings.TrimSpace(year)
	if day == "" || month == "" || year == "" {
		return Date{}, invalid("fecha", CodeDateRequired, ErrDateRequired, "")
	}

	fields := []struct {
		name     string
		raw      string
		min, max int
	}{
		{"dia", day, MinDay, MaxDay},
		{"mes", month, MinMonth, MaxMonth},
		{"anio", year, MinYear, MaxYear},
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f.raw)
		if err != nil {
			return Date{}, invalid(f.name, CodeDateNotNumeric, ErrInvalidDate, fmt.Sprintf("%s %q is not a number", f.name, f.raw))
		}
		values[i] = v
	}
	for i, f := range fields {
		if values[i] < f.min || values[i] > f.max {
			return Date{}, invalid(f.name, CodeDateOutOfRange, ErrInvalidDate, fmt.Sprintf("%s must be between %d and %d", f.name, f.min, f.max))
		}
	}

	return Date{Day: values[0], Month: values[1], Year: values[2]}, nil
}

// ValidateSelection requires at least one resource.
func ValidateSelection(resources []string) error {
	if len(resources) == 0 {
		return invalid("recursos", CodeEmptySelection, ErrEmptySelection, "select at least one resource")
	}
	return nil
}

// UnknownResources wraps names that are not part of the inventory.
func UnknownResources(names []string) error {
	return invalid("recursos", CodeUnknownResource, ErrUnknownResource, strings.Join(names, ", "))
}

// InsufficientResources wraps names whose stock would go below zero.
func InsufficientResources(names []string) error {
	return invalid("recursos", CodeInsufficientResource, ErrInsufficientResource, strings.Join(names, ", "))
}
