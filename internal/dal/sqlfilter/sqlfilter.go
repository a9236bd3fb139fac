package sqlfilter

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/service/models/filter"
)

// Apply adds the predicate's conditions to a select builder.
func Apply(builder sq.SelectBuilder, p filter.Predicate) sq.SelectBuilder {
	for _, cond := range p.Conditions {
		builder = builder.Where(toSqlizer(cond))
	}

	if p.Search != nil && p.Search.Term != "" {
		or := sq.Or{}
		pattern := "%" + p.Search.Term + "%"
		for _, field := range p.Search.Fields {
			or = append(or, sq.ILike{field: pattern})
		}
		builder = builder.Where(or)
	}

	return builder
}

// OrderBy renders the sort with a deterministic secondary tie-break on id, so
// rows with equal sort keys paginate reproducibly.
func OrderBy(sort filter.Sort) string {
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	if sort.Field == "id" {
		return "id " + direction
	}

	return fmt.Sprintf("%s %s, id %s", sort.Field, direction, direction)
}

func toSqlizer(cond filter.Condition) sq.Sqlizer {
	switch cond.Op {
	case filter.OpEq:
		return sq.Eq{cond.Field: cond.Value}
	case filter.OpGt:
		return sq.Gt{cond.Field: cond.Value}
	case filter.OpGte:
		return sq.GtOrEq{cond.Field: cond.Value}
	case filter.OpLt:
		return sq.Lt{cond.Field: cond.Value}
	case filter.OpLte:
		return sq.LtOrEq{cond.Field: cond.Value}
	case filter.OpIn:
		return sq.Eq{cond.Field: cond.Value}
	default:
		return sq.Eq{cond.Field: cond.Value}
	}
}
