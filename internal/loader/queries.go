package loader

// Logical table names as the rest of the system refers to them.
const (
	TableBookings     = "bookings"
	TablePayments     = "payments"
	TableCommissions  = "commissions"
	TableRevenues     = "revenues"
	TableAdvisors     = "advisors"
	TableClients      = "clients"
	TableTours        = "tours"
	TableUsers        = "users"
	TableTourspackage = "tourspackage"
)

// Queries maps every logical table to the SQL that materializes it. Bookings
// is pre-joined with tours, advisors, clients and users so the filter columns
// (destination, advisorcode, advisor_name, client_type, country) live on the
// one table the engine reads.
var Queries = map[string]string{
	TableBookings: `
		SELECT b.*, t.destination, t.country AS tour_country,
		       t.titlename AS tour_name, t.cost AS tour_cost,
		       a.advisorcode, a.status AS advisor_status, au.name AS advisor_name,
		       c.client_type, c.organization, u.country, u.phonenumber
		FROM bookings b
		LEFT JOIN tours t ON b.tour_id = t.tour_id
		LEFT JOIN advisors a ON b.advisor_id = a.advisor_id
		LEFT JOIN users au ON a.user_id = au.user_id
		LEFT JOIN clients c ON b.client_id = c.client_id
		LEFT JOIN users u ON c.user_id = u.user_id`,
	TablePayments:    "SELECT * FROM payments",
	TableCommissions: "SELECT * FROM commissions",
	TableRevenues:    "SELECT * FROM revenues",
	TableAdvisors: `
		SELECT a.*, u.name, u.email, u.phonenumber, u.country
		FROM advisors a
		LEFT JOIN users u ON a.user_id = u.user_id`,
	TableClients: `
		SELECT c.*, u.name, u.email, u.phonenumber, u.country, u.status AS user_status
		FROM clients c
		LEFT JOIN users u ON c.user_id = u.user_id`,
	TableTours:        "SELECT * FROM tours",
	TableUsers:        "SELECT * FROM users",
	TableTourspackage: "SELECT * FROM tourspackage",
}

// DateColumns declares which columns of each logical table must be normalized
// to the canonical datetime representation. Values that fail to parse become
// the absent marker.
var DateColumns = map[string][]string{
	TableBookings:     {"booking_date", "travel_date"},
	TablePayments:     {"payment_date"},
	TableCommissions:  {"comm_pay_date"},
	TableRevenues:     {"date"},
	TableTours:        {"duration"},
	TableUsers:        {"approved_on"},
	TableTourspackage: {"booked_on"},
}

// TableNames returns the logical table names in a fixed order, used for
// deterministic loading and export sheet order.
func TableNames() []string {
	return []string{
		TableBookings, TablePayments, TableCommissions, TableRevenues,
		TableAdvisors, TableClients, TableTours, TableUsers, TableTourspackage,
	}
}
