// Package leadfilter compiles the flat query parameters of a lead listing
// request into a typed, storage-agnostic filter specification. Parsing is
// pure: per-field parsers run left to right and the first malformed
// parameter aborts compilation, so no partial filter is ever applied.
package leadfilter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lead-management-server/internal/utils"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	stringFields = []string{"email", "company", "city"}
	enumFields   = []string{"status", "source"}
	numberFields = []string{"score", "lead_value"}
	dateFields   = []string{"created_at", "last_activity_at"}

	// SearchFields are the columns the free-text search disjunction spans.
	SearchFields = []string{"first_name", "last_name", "email", "company", "city"}

	sortColumns = map[string]struct{}{
		"created_at":       {},
		"updated_at":       {},
		"first_name":       {},
		"last_name":        {},
		"email":            {},
		"company":          {},
		"city":             {},
		"status":           {},
		"source":           {},
		"score":            {},
		"lead_value":       {},
		"last_activity_at": {},
	}

	dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
)

// StringMatch is an exact or substring predicate. Exactly one of Exact and
// Contains is set; Contains matches case-insensitively anywhere in the field.
type StringMatch struct {
	Field    string
	Exact    string
	Contains string
}

// EnumMatch is equality or set membership; a non-empty In wins over Eq.
type EnumMatch struct {
	Field string
	Eq    string
	In    []string
}

// NumberRange is the single bounded-range predicate a numeric field compiles
// to. All set bounds apply together; Eq coexists with open bounds.
type NumberRange struct {
	Field string
	Eq    *float64
	GT    *float64
	LT    *float64
	GTE   *float64
	LTE   *float64
}

// DateRange mirrors NumberRange for date fields. A bare date fills GTE/LTE
// with the whole calendar day; _before and _after tighten with LT/GT.
type DateRange struct {
	Field string
	GT    *time.Time
	LT    *time.Time
	GTE   *time.Time
	LTE   *time.Time
}

type BoolMatch struct {
	Field string
	Value bool
}

// Query is the compiled filter specification: a conjunction of the field
// predicates, an optional free-text disjunction over SearchFields, plus sort
// and pagination.
type Query struct {
	Strings []StringMatch
	Enums   []EnumMatch
	Numbers []NumberRange
	Dates   []DateRange
	Bools   []BoolMatch

	Search string

	SortBy    string
	SortOrder string

	Page  int
	Limit int
}

func (q *Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Compile translates raw query parameters into a Query or a validation error
// naming the offending parameter and the expected format.
func Compile(values url.Values) (*Query, error) {
	q := &Query{
		SortBy:    "created_at",
		SortOrder: "desc",
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}

	for _, field := range stringFields {
		if match, ok := parseStringField(field, values.Get(field)); ok {
			q.Strings = append(q.Strings, match)
		}
	}

	for _, field := range enumFields {
		match, ok, err := parseEnumField(field, values)
		if err != nil {
			return nil, err
		}
		if ok {
			q.Enums = append(q.Enums, match)
		}
	}

	for _, field := range numberFields {
		rng, ok, err := parseNumberField(field, values)
		if err != nil {
			return nil, err
		}
		if ok {
			q.Numbers = append(q.Numbers, rng)
		}
	}

	for _, field := range dateFields {
		rng, ok, err := parseDateField(field, values)
		if err != nil {
			return nil, err
		}
		if ok {
			q.Dates = append(q.Dates, rng)
		}
	}

	if values.Has("is_qualified") {
		q.Bools = append(q.Bools, BoolMatch{
			Field: "is_qualified",
			Value: values.Get("is_qualified") == "true",
		})
	}

	q.Search = strings.TrimSpace(values.Get("search"))

	if sortBy := values.Get("sort_by"); sortBy != "" {
		if _, ok := sortColumns[sortBy]; ok {
			q.SortBy = sortBy
		}
	}
	if sortOrder := values.Get("sort_order"); sortOrder != "" {
		// Anything other than "desc" sorts ascending.
		if sortOrder == "desc" {
			q.SortOrder = "desc"
		} else {
			q.SortOrder = "asc"
		}
	}

	q.Page = parseIntDefault(values.Get("page"), DefaultPage)
	if q.Page < 1 {
		q.Page = 1
	}
	q.Limit = parseIntDefault(values.Get("limit"), DefaultLimit)
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	return q, nil
}

// parseStringField compiles `*foo*` to a case-insensitive substring match on
// the interior text, anything else to an exact lowercased match.
func parseStringField(field, value string) (StringMatch, bool) {
	if value == "" {
		return StringMatch{}, false
	}
	if len(value) >= 2 && strings.HasPrefix(value, "*") && strings.HasSuffix(value, "*") {
		return StringMatch{Field: field, Contains: value[1 : len(value)-1]}, true
	}
	return StringMatch{Field: field, Exact: strings.ToLower(value)}, true
}

func parseEnumField(field string, values url.Values) (EnumMatch, bool, error) {
	inParam := field + "_in"
	if raw := values.Get(inParam); raw != "" {
		var members []string
		if err := json.Unmarshal([]byte(raw), &members); err != nil {
			return EnumMatch{}, false, utils.NewValidationError(
				fmt.Sprintf("Invalid %s format. Use JSON array.", inParam))
		}
		return EnumMatch{Field: field, In: members}, true, nil
	}
	if value := values.Get(field); value != "" {
		return EnumMatch{Field: field, Eq: value}, true, nil
	}
	return EnumMatch{}, false, nil
}

// parseNumberField folds the bare value and the _gt/_lt bounds into one range
// predicate; a valid _between replaces every other bound on the field.
func parseNumberField(field string, values url.Values) (NumberRange, bool, error) {
	rng := NumberRange{Field: field}
	present := false

	if raw := values.Get(field); raw != "" {
		parsed, err := parseNumber(field, raw)
		if err != nil {
			return NumberRange{}, false, err
		}
		rng.Eq = &parsed
		present = true
	}
	if raw := values.Get(field + "_gt"); raw != "" {
		parsed, err := parseNumber(field+"_gt", raw)
		if err != nil {
			return NumberRange{}, false, err
		}
		rng.GT = &parsed
		present = true
	}
	if raw := values.Get(field + "_lt"); raw != "" {
		parsed, err := parseNumber(field+"_lt", raw)
		if err != nil {
			return NumberRange{}, false, err
		}
		rng.LT = &parsed
		present = true
	}
	if raw := values.Get(field + "_between"); raw != "" {
		betweenParam := field + "_between"
		var bounds []float64
		if err := json.Unmarshal([]byte(raw), &bounds); err != nil || len(bounds) != 2 {
			return NumberRange{}, false, utils.NewValidationError(
				fmt.Sprintf("Invalid %s format. Use JSON array [min, max].", betweenParam))
		}
		rng = NumberRange{Field: field, GTE: &bounds[0], LTE: &bounds[1]}
		present = true
	}

	return rng, present, nil
}

// parseDateField: a bare date spans its whole calendar day inclusively,
// _before/_after tighten the open bounds, and a valid _between replaces all
// prior bounds on the field.
func parseDateField(field string, values url.Values) (DateRange, bool, error) {
	rng := DateRange{Field: field}
	present := false

	if raw := values.Get(field); raw != "" {
		day, err := parseDate(field, raw)
		if err != nil {
			return DateRange{}, false, err
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999000000, day.Location())
		rng.GTE = &start
		rng.LTE = &end
		present = true
	}
	if raw := values.Get(field + "_before"); raw != "" {
		parsed, err := parseDate(field+"_before", raw)
		if err != nil {
			return DateRange{}, false, err
		}
		rng.LT = &parsed
		present = true
	}
	if raw := values.Get(field + "_after"); raw != "" {
		parsed, err := parseDate(field+"_after", raw)
		if err != nil {
			return DateRange{}, false, err
		}
		rng.GT = &parsed
		present = true
	}
	if raw := values.Get(field + "_between"); raw != "" {
		betweenParam := field + "_between"
		var bounds []string
		if err := json.Unmarshal([]byte(raw), &bounds); err != nil || len(bounds) != 2 {
			return DateRange{}, false, utils.NewValidationError(
				fmt.Sprintf("Invalid %s format. Use JSON array [start, end].", betweenParam))
		}
		start, err := parseDate(betweenParam, bounds[0])
		if err != nil {
			return DateRange{}, false, err
		}
		end, err := parseDate(betweenParam, bounds[1])
		if err != nil {
			return DateRange{}, false, err
		}
		rng = DateRange{Field: field, GTE: &start, LTE: &end}
		present = true
	}

	return rng, present, nil
}

func parseNumber(param, raw string) (float64, error) {
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, utils.NewValidationError(fmt.Sprintf("Invalid %s value. Use a number.", param))
	}
	return parsed, nil
}

func parseDate(param, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, utils.NewValidationError(fmt.Sprintf("Invalid %s date format", param))
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
