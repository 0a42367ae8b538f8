package engine

import "time"

// Criteria is one render pass worth of filter selections. Pointer and nil
// fields distinguish "no constraint" from a deliberately chosen zero value.
//
// Status sets keep the source dashboard's multiselect semantics: a nil slice
// means unconstrained, while an empty non-nil slice means the user cleared
// every option and therefore matches no row at all. The divergence between
// those two readings is intentional and callers must pick one explicitly.
type Criteria struct {
	DateFrom *time.Time // inclusive lower bound on booking_date
	DateTo   *time.Time // inclusive upper bound on booking_date

	PaymentStatuses []string
	BookingStatuses []string

	ClientType *string
	Country    *string

	AdvisorQuery     string // case-insensitive substring over advisor code/name
	DestinationQuery string // case-insensitive substring over destination
}

// IsZero reports whether no field constrains anything.
func (c Criteria) IsZero() bool {
	return c.DateFrom == nil && c.DateTo == nil &&
		c.PaymentStatuses == nil && c.BookingStatuses == nil &&
		c.ClientType == nil && c.Country == nil &&
		c.AdvisorQuery == "" && c.DestinationQuery == ""
}
