package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fytours/tourdash/internal/table"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bookingsFixture() table.Table {
	t := table.New(
		"booking_id", ColBookingDate, ColPaymentStatus, ColBookingStatus,
		ColClientType, ColCountry, ColAdvisorCode, ColAdvisorName, ColDestination,
	)
	t.AppendRow(table.String("b1"), table.Time(date(2023, 12, 31)), table.String("Paid"),
		table.String("Confirmed"), table.String("Individual"), table.String("Rwanda"),
		table.String("A-SMITH01"), table.String("John Smith"), table.String("Kigali"))
	t.AppendRow(table.String("b2"), table.Time(date(2024, 1, 15)), table.String("Pending"),
		table.String("Pending"), table.String("Corporate"), table.String("Kenya"),
		table.String("A-DOE02"), table.String("Jane Doe"), table.String("Nairobi"))
	t.AppendRow(table.String("b3"), table.Time(date(2024, 2, 1)), table.String("Paid"),
		table.String("Cancelled"), table.String("Individual"), table.String("Rwanda"),
		table.String("A-KANE03"), table.String("Bob Kane"), table.String("Zanzibar"))
	t.AppendRow(table.String("b4"), table.Absent(), table.String("Paid"),
		table.String("Confirmed"), table.String("Corporate"), table.String("Uganda"),
		table.Absent(), table.String("Ann Smithers"), table.String("Kigali"))
	return t
}

func TestApplyFiltersIdentity(t *testing.T) {
	in := bookingsFixture()
	out := ApplyFilters(in, Criteria{})
	require.Equal(t, in.NumRows(), out.NumRows())
	for i := 0; i < in.NumRows(); i++ {
		require.Equal(t, in.Cell(i, "booking_id"), out.Cell(i, "booking_id"))
	}
}

func TestApplyFiltersSubsetAndOrder(t *testing.T) {
	in := bookingsFixture()
	status := "Individual"
	out := ApplyFilters(in, Criteria{ClientType: &status})
	require.LessOrEqual(t, out.NumRows(), in.NumRows())
	require.Equal(t, "b1", out.Cell(0, "booking_id").Str())
	require.Equal(t, "b3", out.Cell(1, "booking_id").Str())
}

func TestApplyFiltersIdempotent(t *testing.T) {
	in := bookingsFixture()
	c := Criteria{AdvisorQuery: "smith"}
	first := ApplyFilters(in, c)
	second := ApplyFilters(in, c)
	require.Equal(t, first, second)
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	in := bookingsFixture()
	before := in.NumRows()
	from := date(2024, 1, 1)
	_ = ApplyFilters(in, Criteria{DateFrom: &from})
	require.Equal(t, before, in.NumRows())
	require.Equal(t, "b1", in.Cell(0, "booking_id").Str())
}

func TestDateRangeInclusiveExcludesAbsent(t *testing.T) {
	from, to := date(2024, 1, 1), date(2024, 1, 31)
	out := ApplyFilters(bookingsFixture(), Criteria{DateFrom: &from, DateTo: &to})
	require.Equal(t, 1, out.NumRows())
	require.Equal(t, "b2", out.Cell(0, "booking_id").Str())
}

func TestDateRangeBoundaryIsInclusive(t *testing.T) {
	from, to := date(2023, 12, 31), date(2024, 2, 1)
	out := ApplyFilters(bookingsFixture(), Criteria{DateFrom: &from, DateTo: &to})
	// b4 has an absent booking date and never matches a set range.
	require.Equal(t, 3, out.NumRows())
}

func TestAdvisorQueryMatchesCodeOrName(t *testing.T) {
	out := ApplyFilters(bookingsFixture(), Criteria{AdvisorQuery: "smith"})
	require.Equal(t, 2, out.NumRows())
	require.Equal(t, "b1", out.Cell(0, "booking_id").Str()) // code A-SMITH01
	require.Equal(t, "b4", out.Cell(1, "booking_id").Str()) // name Ann Smithers

	none := ApplyFilters(bookingsFixture(), Criteria{AdvisorQuery: "nonexistent"})
	require.Equal(t, 0, none.NumRows())
}

func TestDestinationQueryCaseInsensitive(t *testing.T) {
	out := ApplyFilters(bookingsFixture(), Criteria{DestinationQuery: "KIGALI"})
	require.Equal(t, 2, out.NumRows())
}

func TestStatusSetNilVsEmpty(t *testing.T) {
	in := bookingsFixture()

	// nil: no constraint.
	all := ApplyFilters(in, Criteria{PaymentStatuses: nil})
	require.Equal(t, in.NumRows(), all.NumRows())

	// empty non-nil: the cleared multiselect matches nothing.
	none := ApplyFilters(in, Criteria{PaymentStatuses: []string{}})
	require.Equal(t, 0, none.NumRows())
}

func TestStatusSetSelection(t *testing.T) {
	out := ApplyFilters(bookingsFixture(), Criteria{BookingStatuses: []string{"Confirmed"}})
	require.Equal(t, 2, out.NumRows())
}

func TestConjunctiveFilters(t *testing.T) {
	country := "Rwanda"
	out := ApplyFilters(bookingsFixture(), Criteria{
		Country:         &country,
		PaymentStatuses: []string{"Paid"},
		BookingStatuses: []string{"Confirmed"},
	})
	require.Equal(t, 1, out.NumRows())
	require.Equal(t, "b1", out.Cell(0, "booking_id").Str())
}

func TestMissingColumnDegradesToEmpty(t *testing.T) {
	bare := table.New("booking_id")
	bare.AppendRow(table.String("b1"))
	ct := "Individual"
	out := ApplyFilters(bare, Criteria{ClientType: &ct})
	require.Equal(t, 0, out.NumRows())

	// Unset criteria still pass through a column-poor table untouched.
	require.Equal(t, 1, ApplyFilters(bare, Criteria{}).NumRows())
}

func TestCriteriaIsZero(t *testing.T) {
	require.True(t, Criteria{}.IsZero())
	require.False(t, Criteria{AdvisorQuery: "x"}.IsZero())
	require.False(t, Criteria{PaymentStatuses: []string{}}.IsZero())
}
