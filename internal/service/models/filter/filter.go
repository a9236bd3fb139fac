package filter

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the semantics of one declared filter parameter.
type Kind int

const (
	// KindExact matches the field exactly.
	KindExact Kind = iota
	// KindMin is the inclusive lower bound of a numeric range.
	KindMin
	// KindMax is the inclusive upper bound of a numeric range.
	KindMax
	// KindSet matches any of a comma-separated set of values.
	KindSet
	// KindDateFrom is the inclusive lower bound of a date range (RFC 3339 or 2006-01-02).
	KindDateFrom
	// KindDateTo is the inclusive upper bound of a date range.
	KindDateTo
	// KindStockBucket maps out/low/available to stock ranges.
	KindStockBucket
	// KindBool matches a boolean field.
	KindBool
)

// Rule declares one recognized filter parameter and the column it constrains.
type Rule struct {
	Param string
	Field string
	Kind  Kind
}

// Spec is the closed, per-entity filter schema, resolved once at startup.
// Searchable lists the fields eligible for case-insensitive substring search.
// Sortable maps caller-facing sort names to columns; unknown names fall back
// to the created_at default.
type Spec struct {
	Searchable []string
	Sortable   map[string]string
	Rules      []Rule
}

// Op is a comparison operator inside a predicate condition.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpGte
	OpLt
	OpLte
	OpIn
)

// Condition constrains a single field. Conditions are AND-ed together.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Search is a case-insensitive substring match OR-ed across Fields.
type Search struct {
	Fields []string
	Term   string
}

// Predicate is the store-independent conjunction the query engine builds and
// a store adapter translates.
type Predicate struct {
	Search     *Search
	Conditions []Condition
}

// Stock bucket boundaries: out is zero, low is (0, LowStockMax], available is
// everything above.
const LowStockMax = 5

// Build constructs a predicate from raw filter parameters and the entity's
// spec. Pure function, no I/O. Unknown parameters are ignored and declared
// parameters with unparsable values are skipped, mirroring lenient query
// parsing at the API boundary. Soft-deleted rows are excluded unless the
// caller asks for them with isDeleted=true.
func Build(raw map[string]string, spec Spec, search string) Predicate {
	p := Predicate{}

	if raw["isDeleted"] == "true" {
		p.Conditions = append(p.Conditions, Condition{Field: "is_deleted", Op: OpEq, Value: true})
	} else {
		p.Conditions = append(p.Conditions, Condition{Field: "is_deleted", Op: OpEq, Value: false})
	}

	if search != "" && len(spec.Searchable) > 0 {
		p.Search = &Search{Fields: spec.Searchable, Term: search}
	}

	for _, rule := range spec.Rules {
		value, ok := raw[rule.Param]
		if !ok || value == "" {
			continue
		}
		p.Conditions = append(p.Conditions, buildConditions(rule, value)...)
	}

	return p
}

func buildConditions(rule Rule, value string) []Condition {
	switch rule.Kind {
	case KindExact:
		return []Condition{{Field: rule.Field, Op: OpEq, Value: value}}
	case KindMin:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return []Condition{{Field: rule.Field, Op: OpGte, Value: n}}
		}
	case KindMax:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return []Condition{{Field: rule.Field, Op: OpLte, Value: n}}
		}
	case KindSet:
		values := splitSet(value)
		if len(values) > 0 {
			return []Condition{{Field: rule.Field, Op: OpIn, Value: values}}
		}
	case KindDateFrom:
		if t, ok := parseDate(value); ok {
			return []Condition{{Field: rule.Field, Op: OpGte, Value: t}}
		}
	case KindDateTo:
		if t, ok := parseDate(value); ok {
			return []Condition{{Field: rule.Field, Op: OpLte, Value: t}}
		}
	case KindStockBucket:
		return stockBucketConditions(rule.Field, value)
	case KindBool:
		if b, err := strconv.ParseBool(value); err == nil {
			return []Condition{{Field: rule.Field, Op: OpEq, Value: b}}
		}
	}

	return nil
}

func stockBucketConditions(field, bucket string) []Condition {
	switch bucket {
	case "out":
		return []Condition{{Field: field, Op: OpEq, Value: 0}}
	case "low":
		return []Condition{
			{Field: field, Op: OpGt, Value: 0},
			{Field: field, Op: OpLte, Value: LowStockMax},
		}
	case "available":
		return []Condition{{Field: field, Op: OpGt, Value: LowStockMax}}
	}

	return nil
}

func splitSet(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseDate(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// Sort is a resolved sort key with a deterministic direction.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSortField orders listings by creation time unless the caller picks a
// declared sortable field.
const DefaultSortField = "created_at"

// ResolveSort maps the caller-facing sortBy through the schema's Sortable set.
func ResolveSort(spec Spec, sortBy string, desc bool) Sort {
	if column, ok := spec.Sortable[sortBy]; ok {
		return Sort{Field: column, Desc: desc}
	}

	return Sort{Field: DefaultSortField, Desc: desc}
}
