package dashboard

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/engine"
	"github.com/fytours/tourdash/internal/loader"
	"github.com/fytours/tourdash/internal/metrics"
	"github.com/fytours/tourdash/internal/snapshot"
	"github.com/fytours/tourdash/internal/table"
)

// Service derives every dashboard view from the current snapshot plus the
// caller's criteria. It holds no state of its own between renders; each call
// is a full pull-based recomputation.
type Service struct {
	log    *zap.Logger
	holder *snapshot.Holder
	now    func() time.Time
}

func NewService(log *zap.Logger, holder *snapshot.Holder) *Service {
	return &Service{log: log, holder: holder, now: time.Now}
}

// KPISummary carries the headline numbers. Revenue and commissions come from
// the unfiltered companion tables; the rest derive from the filtered bookings.
type KPISummary struct {
	TotalBookings    int     `json:"total_bookings"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCommissions float64 `json:"total_commissions"`
	NetIncome        float64 `json:"net_income"`
	AvgGroupSize     float64 `json:"avg_group_size"`
	UpcomingTrips    int     `json:"upcoming_trips"`
}

// Alerts surfaces the attention counters shown above the fold.
type Alerts struct {
	UnapprovedUsers  int `json:"unapproved_users"`
	PendingPayments  int `json:"pending_payments"`
	InactiveAdvisors int `json:"inactive_advisors"`
}

// ChartPoint is one entry of a named chart series.
type ChartPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// AdvisorPerf is one row of the top-advisors table.
type AdvisorPerf struct {
	AdvisorCode  string  `json:"advisorcode"`
	Bookings     int     `json:"bookings"`
	TotalAmount  float64 `json:"total_amount"`
	AvgGroupSize float64 `json:"avg_group_size"`
}

// FilterOptions lists the selectable values the UI offers, derived from the
// loaded tables rather than hardcoded.
type FilterOptions struct {
	PaymentStatuses []string   `json:"payment_statuses"`
	BookingStatuses []string   `json:"booking_statuses"`
	ClientTypes     []string   `json:"client_types"`
	Countries       []string   `json:"countries"`
	MinBookingDate  *time.Time `json:"min_booking_date,omitempty"`
	MaxBookingDate  *time.Time `json:"max_booking_date,omitempty"`
}

func (s *Service) snapshotTable(ctx context.Context, name string) (table.Table, *snapshot.Snapshot, error) {
	snap, err := s.holder.Current(ctx)
	if err != nil {
		return table.Table{}, nil, err
	}
	t, _ := snap.Table(name)
	return t, snap, nil
}

// FilteredBookings applies the criteria to the bookings table.
func (s *Service) FilteredBookings(ctx context.Context, c engine.Criteria) (table.Table, error) {
	bookings, _, err := s.snapshotTable(ctx, loader.TableBookings)
	if err != nil {
		return table.Table{}, err
	}
	metrics.RenderPassesTotal.WithLabelValues("bookings").Inc()
	return engine.ApplyFilters(bookings, c), nil
}

// KPIs computes the headline metrics for one render pass.
func (s *Service) KPIs(ctx context.Context, c engine.Criteria) (KPISummary, error) {
	snap, err := s.holder.Current(ctx)
	if err != nil {
		return KPISummary{}, err
	}
	metrics.RenderPassesTotal.WithLabelValues("kpis").Inc()

	bookings, _ := snap.Table(loader.TableBookings)
	payments, _ := snap.Table(loader.TablePayments)
	commissions, _ := snap.Table(loader.TableCommissions)
	filtered := engine.ApplyFilters(bookings, c)

	now := s.now()
	income := table.SumColumn(payments, "amount")
	comm := table.SumColumn(commissions, "commission_amount")
	return KPISummary{
		TotalBookings:    table.CountDistinct(filtered, "booking_id"),
		TotalRevenue:     income,
		TotalCommissions: comm,
		NetIncome:        income - comm,
		AvgGroupSize:     table.MeanColumn(filtered, "number_of_travelers"),
		UpcomingTrips: table.CountWhere(filtered, "travel_date", func(c table.Cell) bool {
			return c.Kind() == table.KindTime && c.Time().After(now)
		}),
	}, nil
}

// AlertCounts reports the warning counters over the unfiltered tables.
func (s *Service) AlertCounts(ctx context.Context) (Alerts, error) {
	snap, err := s.holder.Current(ctx)
	if err != nil {
		return Alerts{}, err
	}
	metrics.RenderPassesTotal.WithLabelValues("alerts").Inc()

	users, _ := snap.Table(loader.TableUsers)
	payments, _ := snap.Table(loader.TablePayments)
	advisors, _ := snap.Table(loader.TableAdvisors)

	return Alerts{
		UnapprovedUsers: table.CountWhere(users, "approved_on", func(c table.Cell) bool {
			return c.IsAbsent()
		}),
		PendingPayments: table.CountWhere(payments, "status", func(c table.Cell) bool {
			return !c.IsAbsent() && c.Str() == "Pending"
		}),
		InactiveAdvisors: countInactiveAdvisors(advisors),
	}, nil
}

// countInactiveAdvisors prefers the joined advisor_status column and falls
// back to status; neither column present means zero, not an error.
func countInactiveAdvisors(advisors table.Table) int {
	col := "advisor_status"
	if advisors.ColIndex(col) < 0 {
		col = "status"
	}
	return table.CountWhere(advisors, col, func(c table.Cell) bool {
		return !c.IsAbsent() && c.Str() == "Inactive"
	})
}

// Chart names accepted by Chart.
const (
	ChartNetIncomeOverTime = "net_income_over_time"
	ChartPaymentMethods    = "payment_methods"
	ChartBookingsByStatus  = "bookings_by_status"
	ChartBookingsByMonth   = "bookings_by_month"
	ChartAdvisorStatus     = "advisor_status"
	ChartClientTypes       = "client_types"
	ChartClientCountries   = "client_countries"
	ChartTopDestinations   = "top_destinations"
)

// ChartNames lists every chart the dashboard serves.
func ChartNames() []string {
	return []string{
		ChartNetIncomeOverTime, ChartPaymentMethods, ChartBookingsByStatus,
		ChartBookingsByMonth, ChartAdvisorStatus, ChartClientTypes,
		ChartClientCountries, ChartTopDestinations,
	}
}

// Chart derives the named aggregate series. Unknown names and charts whose
// source column is missing both come back as an empty series; each chart is
// independent and never aborts the render pass.
func (s *Service) Chart(ctx context.Context, name string, c engine.Criteria) ([]ChartPoint, error) {
	snap, err := s.holder.Current(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RenderPassesTotal.WithLabelValues("chart:" + name).Inc()

	switch name {
	case ChartNetIncomeOverTime:
		revenues, _ := snap.Table(loader.TableRevenues)
		return statPoints(table.GroupStats(revenues, "date", "net_income")), nil
	case ChartPaymentMethods:
		payments, _ := snap.Table(loader.TablePayments)
		return countPoints(table.GroupCount(payments, "method_used")), nil
	case ChartBookingsByStatus:
		filtered, err := s.FilteredBookings(ctx, c)
		if err != nil {
			return nil, err
		}
		return countPoints(table.GroupCount(filtered, engine.ColBookingStatus)), nil
	case ChartBookingsByMonth:
		filtered, err := s.FilteredBookings(ctx, c)
		if err != nil {
			return nil, err
		}
		points := countPoints(table.GroupCountBy(filtered, engine.ColBookingDate, monthKey))
		sort.Slice(points, func(a, b int) bool { return points[a].Key < points[b].Key })
		return points, nil
	case ChartAdvisorStatus:
		advisors, _ := snap.Table(loader.TableAdvisors)
		col := "advisor_status"
		if advisors.ColIndex(col) < 0 {
			col = "status"
		}
		return countPoints(table.GroupCount(advisors, col)), nil
	case ChartClientTypes:
		clients, _ := snap.Table(loader.TableClients)
		return countPoints(table.GroupCount(clients, "client_type")), nil
	case ChartClientCountries:
		users, _ := snap.Table(loader.TableUsers)
		return countPoints(table.TopNByCount(users, "country", 10)), nil
	case ChartTopDestinations:
		filtered, err := s.FilteredBookings(ctx, c)
		if err != nil {
			return nil, err
		}
		return countPoints(table.TopNByCount(filtered, engine.ColDestination, 10)), nil
	default:
		s.log.Warn("unknown chart requested", zap.String("chart", name))
		return nil, nil
	}
}

// TopAdvisors ranks advisors of the filtered bookings by booking count, with
// total amount and average group size per advisor.
func (s *Service) TopAdvisors(ctx context.Context, c engine.Criteria, n int) ([]AdvisorPerf, error) {
	filtered, err := s.FilteredBookings(ctx, c)
	if err != nil {
		return nil, err
	}
	metrics.RenderPassesTotal.WithLabelValues("top_advisors").Inc()

	counts := table.GroupCount(filtered, engine.ColAdvisorCode)
	amounts := statIndex(table.GroupStats(filtered, engine.ColAdvisorCode, "total_amount"))
	groups := statIndex(table.GroupStats(filtered, engine.ColAdvisorCode, "number_of_travelers"))

	out := make([]AdvisorPerf, 0, len(counts))
	for _, row := range counts {
		perf := AdvisorPerf{AdvisorCode: row.Key, Bookings: row.Count}
		if st, ok := amounts[row.Key]; ok {
			perf.TotalAmount = st.Sum
		}
		if st, ok := groups[row.Key]; ok {
			perf.AvgGroupSize = st.Mean
		}
		out = append(out, perf)
	}
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Options derives the selectable filter values from the loaded tables.
func (s *Service) Options(ctx context.Context) (FilterOptions, error) {
	snap, err := s.holder.Current(ctx)
	if err != nil {
		return FilterOptions{}, err
	}
	bookings, _ := snap.Table(loader.TableBookings)
	clients, _ := snap.Table(loader.TableClients)
	users, _ := snap.Table(loader.TableUsers)

	opts := FilterOptions{
		PaymentStatuses: table.DistinctValues(bookings, engine.ColPaymentStatus),
		BookingStatuses: table.DistinctValues(bookings, engine.ColBookingStatus),
		ClientTypes:     table.DistinctValues(clients, "client_type"),
		Countries:       table.DistinctValues(users, "country"),
	}
	opts.MinBookingDate, opts.MaxBookingDate = dateBounds(bookings, engine.ColBookingDate)
	return opts, nil
}

// TableErrors exposes which logical tables failed to load in the current
// snapshot, so the UI can flag partial data inline.
func (s *Service) TableErrors(ctx context.Context) (map[string]string, error) {
	snap, err := s.holder.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(snap.Errs))
	for name, terr := range snap.Errs {
		out[name] = terr.Error()
	}
	return out, nil
}

func monthKey(c table.Cell) (string, bool) {
	if c.Kind() != table.KindTime {
		return "", false
	}
	return c.Time().Format("2006-01"), true
}

func countPoints(rows []table.CountRow) []ChartPoint {
	out := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, ChartPoint{Key: r.Key, Value: float64(r.Count)})
	}
	return out
}

func statPoints(rows []table.StatRow) []ChartPoint {
	out := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, ChartPoint{Key: r.Key, Value: r.Sum})
	}
	return out
}

func statIndex(rows []table.StatRow) map[string]table.StatRow {
	out := make(map[string]table.StatRow, len(rows))
	for _, r := range rows {
		out[r.Key] = r
	}
	return out
}

func dateBounds(t table.Table, col string) (*time.Time, *time.Time) {
	i := t.ColIndex(col)
	if i < 0 {
		return nil, nil
	}
	var min, max *time.Time
	for _, row := range t.Rows {
		if i >= len(row) || row[i].Kind() != table.KindTime {
			continue
		}
		ts := row[i].Time()
		if min == nil || ts.Before(*min) {
			v := ts
			min = &v
		}
		if max == nil || ts.After(*max) {
			v := ts
			max = &v
		}
	}
	return min, max
}
