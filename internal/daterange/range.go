// Package daterange resolves the named reporting periods offered by the
// dashboard into concrete calendar date windows.
package daterange

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizledger/cashbank/internal/models"
)

type Name string

const (
	Today              Name = "Today"
	Yesterday          Name = "Yesterday"
	ThisWeek           Name = "This Week"
	LastWeek           Name = "Last Week"
	Last7Days          Name = "Last 7 Days"
	Last30Days         Name = "Last 30 Days"
	Last365Days        Name = "Last 365 Days"
	ThisMonth          Name = "This Month"
	PreviousMonth      Name = "Previous Month"
	CurrentFiscalYear  Name = "Current Fiscal Year"
	PreviousFiscalYear Name = "Previous Fiscal Year"
	Custom             Name = "Custom Date Range"
)

var names = []Name{
	Today, Yesterday, ThisWeek, LastWeek, Last7Days, Last30Days, Last365Days,
	ThisMonth, PreviousMonth, CurrentFiscalYear, PreviousFiscalYear, Custom,
}

// Names lists the supported ranges in display order.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)
	return out
}

// ParseName matches s against the supported names, ignoring case and
// surrounding whitespace. Hyphen and underscore separators are accepted.
func ParseName(s string) (Name, error) {
	key := normalize(s)
	for _, n := range names {
		if normalize(string(n)) == key {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Resolver turns range names into concrete windows anchored on its clock.
type Resolver struct {
	fiscalStart time.Month
	loc         *time.Location
	now         func() time.Time
}

func NewResolver(fiscalStart time.Month, loc *time.Location) *Resolver {
	if fiscalStart < time.January || fiscalStart > time.December {
		fiscalStart = time.April
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{fiscalStart: fiscalStart, loc: loc, now: time.Now}
}

// WithClock returns a copy of the resolver that reads the time from now.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	c := *r
	c.now = now
	return &c
}

// Today is the current calendar date in the resolver's location.
func (r *Resolver) Today() models.Date {
	return models.DateOf(r.now().In(r.loc))
}

// Resolve maps a named range to its window. Custom resolves to an unbounded
// window; use CustomRange to supply the bounds.
func (r *Resolver) Resolve(name Name) (models.DateRange, error) {
	today := r.Today()

	switch name {
	case Today:
		return bounded(name, today, today), nil
	case Yesterday:
		y := addDays(today, -1)
		return bounded(name, y, y), nil
	case ThisWeek:
		start := startOfWeek(today)
		return bounded(name, start, addDays(start, 6)), nil
	case LastWeek:
		start := addDays(startOfWeek(today), -7)
		return bounded(name, start, addDays(start, 6)), nil
	case Last7Days:
		return bounded(name, addDays(today, -6), today), nil
	case Last30Days:
		return bounded(name, addDays(today, -29), today), nil
	case Last365Days:
		return bounded(name, addDays(today, -364), today), nil
	case ThisMonth:
		start := monthStart(today)
		return bounded(name, start, addDays(addMonths(start, 1), -1)), nil
	case PreviousMonth:
		current := monthStart(today)
		return bounded(name, addMonths(current, -1), addDays(current, -1)), nil
	case CurrentFiscalYear:
		start := r.fiscalYearStart(today)
		return bounded(name, start, addDays(addMonths(start, 12), -1)), nil
	case PreviousFiscalYear:
		current := r.fiscalYearStart(today)
		return bounded(name, addMonths(current, -12), addDays(current, -1)), nil
	case Custom:
		return models.DateRange{Name: string(Custom)}, nil
	}
	return models.DateRange{}, fmt.Errorf("unknown date range %q", name)
}

// CustomRange builds a custom window. When either bound is missing the
// window is unbounded and filters nothing.
func (r *Resolver) CustomRange(start, end *models.Date) (models.DateRange, error) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return models.DateRange{Name: string(Custom)}, nil
	}
	if start.After(end.Time) {
		return models.DateRange{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return bounded(Custom, *start, *end), nil
}

func (r *Resolver) fiscalYearStart(today models.Date) models.Date {
	year := today.Year()
	if today.Month() < r.fiscalStart {
		year--
	}
	return models.NewDate(year, r.fiscalStart, 1)
}

func bounded(name Name, start, end models.Date) models.DateRange {
	return models.DateRange{Name: string(name), Start: &start, End: &end}
}

func addDays(d models.Date, days int) models.Date {
	return models.Date{Time: d.AddDate(0, 0, days)}
}

func addMonths(d models.Date, months int) models.Date {
	return models.Date{Time: d.AddDate(0, months, 0)}
}

func monthStart(d models.Date) models.Date {
	return models.NewDate(d.Year(), d.Month(), 1)
}

// startOfWeek returns the Monday on or before d.
func startOfWeek(d models.Date) models.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return addDays(d, -offset)
}
