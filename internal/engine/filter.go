package engine

import (
	"strings"

	"github.com/fytours/tourdash/internal/table"
)

// Column names the filters read from the joined bookings table.
const (
	ColBookingDate   = "booking_date"
	ColPaymentStatus = "payment_status"
	ColBookingStatus = "status"
	ColClientType    = "client_type"
	ColCountry       = "country"
	ColAdvisorCode   = "advisorcode"
	ColAdvisorName   = "advisor_name"
	ColDestination   = "destination"
)

// ApplyFilters narrows bookings to the rows matching every set criterion.
// Predicates run conjunctively in a fixed order, unset criteria pass through,
// row order is preserved and the input is never mutated. A set criterion whose
// column is missing from the table degrades to an empty result rather than an
// error.
func ApplyFilters(bookings table.Table, c Criteria) table.Table {
	idx := make([]int, bookings.NumRows())
	for i := range idx {
		idx[i] = i
	}

	idx = filterDateRange(bookings, idx, c)
	idx = filterInSet(bookings, idx, ColPaymentStatus, c.PaymentStatuses)
	idx = filterInSet(bookings, idx, ColBookingStatus, c.BookingStatuses)
	idx = filterEquals(bookings, idx, ColClientType, c.ClientType)
	idx = filterEquals(bookings, idx, ColCountry, c.Country)
	idx = filterAdvisor(bookings, idx, c.AdvisorQuery)
	idx = filterContains(bookings, idx, ColDestination, c.DestinationQuery)

	return bookings.Select(idx)
}

// filterDateRange keeps rows whose booking date lies inside the inclusive
// range. Rows with an absent date never match a set range.
func filterDateRange(t table.Table, idx []int, c Criteria) []int {
	if c.DateFrom == nil && c.DateTo == nil {
		return idx
	}
	if t.ColIndex(ColBookingDate) < 0 {
		return nil
	}
	out := idx[:0]
	for _, i := range idx {
		cell := t.Cell(i, ColBookingDate)
		if cell.Kind() != table.KindTime {
			continue
		}
		d := cell.Time()
		if c.DateFrom != nil && d.Before(*c.DateFrom) {
			continue
		}
		if c.DateTo != nil && d.After(*c.DateTo) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func filterInSet(t table.Table, idx []int, col string, set []string) []int {
	if set == nil {
		return idx
	}
	if t.ColIndex(col) < 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(set))
	for _, s := range set {
		allowed[s] = struct{}{}
	}
	out := idx[:0]
	for _, i := range idx {
		cell := t.Cell(i, col)
		if cell.IsAbsent() {
			continue
		}
		if _, ok := allowed[cell.Str()]; ok {
			out = append(out, i)
		}
	}
	return out
}

func filterEquals(t table.Table, idx []int, col string, want *string) []int {
	if want == nil {
		return idx
	}
	if t.ColIndex(col) < 0 {
		return nil
	}
	out := idx[:0]
	for _, i := range idx {
		cell := t.Cell(i, col)
		if !cell.IsAbsent() && cell.Str() == *want {
			out = append(out, i)
		}
	}
	return out
}

func filterContains(t table.Table, idx []int, col, query string) []int {
	if query == "" {
		return idx
	}
	if t.ColIndex(col) < 0 {
		return nil
	}
	q := strings.ToLower(query)
	out := idx[:0]
	for _, i := range idx {
		if cellContains(t.Cell(i, col), q) {
			out = append(out, i)
		}
	}
	return out
}

// filterAdvisor matches the query against advisor code or advisor name,
// whichever columns the table carries. Both columns missing degrades to an
// empty result.
func filterAdvisor(t table.Table, idx []int, query string) []int {
	if query == "" {
		return idx
	}
	hasCode := t.ColIndex(ColAdvisorCode) >= 0
	hasName := t.ColIndex(ColAdvisorName) >= 0
	if !hasCode && !hasName {
		return nil
	}
	q := strings.ToLower(query)
	out := idx[:0]
	for _, i := range idx {
		if hasCode && cellContains(t.Cell(i, ColAdvisorCode), q) {
			out = append(out, i)
			continue
		}
		if hasName && cellContains(t.Cell(i, ColAdvisorName), q) {
			out = append(out, i)
		}
	}
	return out
}

func cellContains(c table.Cell, loweredQuery string) bool {
	if c.IsAbsent() {
		return false
	}
	return strings.Contains(strings.ToLower(c.Str()), loweredQuery)
}
