package repository

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/noah-isme/coaching-admin-api/internal/models"
)

// psql builds Postgres flavoured statements.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ScopeColumns maps scope fields onto qualified columns. Empty columns are not filterable.
type ScopeColumns struct {
	Session       string
	Class         string
	Batch         string
	Section       string
	Student       string
	Status        string
	FeeType       string
	PaymentStatus string
	Date          string
}

// ScopePredicate AND-combines one inclusion predicate per constrained scope field.
// The period is inclusive of both bounds; the upper bound is expressed as "before the next midnight".
func ScopePredicate(scope models.ReportScope, cols ScopeColumns) sq.And {
	return ScopePredicateIn(scope, cols, time.UTC)
}

// ScopePredicateIn is ScopePredicate with the period's midnights taken in loc, for timestamp columns
// whose calendar day depends on the center's zone.
func ScopePredicateIn(scope models.ReportScope, cols ScopeColumns, loc *time.Location) sq.And {
	pred := sq.And{}
	add := func(col, value string) {
		if col != "" && value != "" {
			pred = append(pred, sq.Eq{col: value})
		}
	}
	add(cols.Session, scope.SessionID)
	add(cols.Class, scope.ClassID)
	add(cols.Batch, scope.BatchID)
	add(cols.Section, scope.SectionID)
	add(cols.Student, scope.StudentID)
	add(cols.Status, string(scope.Status))
	add(cols.FeeType, string(scope.FeeType))
	add(cols.PaymentStatus, string(scope.PaymentStatus))

	if cols.Date != "" && scope.Period != nil {
		if scope.Period.From != nil {
			pred = append(pred, sq.GtOrEq{cols.Date: midnight(*scope.Period.From, loc)})
		}
		if scope.Period.To != nil {
			pred = append(pred, sq.Lt{cols.Date: midnight(*scope.Period.To, loc).AddDate(0, 0, 1)})
		}
	}
	return pred
}

// midnight returns the start of t's calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
