// Package travel implements the SQLite-backed travel database behind the
// support agent's business tools: passenger tickets, flights, car rentals,
// hotels and excursion recommendations.
package travel

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	errx "github.com/tripdesk/server/internal/core/error"
	logx "github.com/tripdesk/server/pkg/logger"
)

//go:embed migrations.sql
var migrations string

//go:embed seed.sql
var seedData string

// MinRescheduleNotice is how far in the future a flight's departure must be
// before a ticket may be moved onto it.
const MinRescheduleNotice = 3 * time.Hour

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the travel database at dsn and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("travel db DSN not set")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open travel db: %w", err)
	}
	if _, err := db.Exec(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply travel db schema: %w", err)
	}
	logx.Debug().Str("dsn", dsn).Msg("travel db ready")
	return &Store{db: db}, nil
}

// Seed loads the demo dataset. Idempotent.
func (s *Store) Seed() error {
	if _, err := s.db.Exec(seedData); err != nil {
		return fmt.Errorf("seed travel db: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// TicketInfo is one row of a passenger's current bookings.
type TicketInfo struct {
	TicketNo           string `json:"ticket_no"`
	BookRef            string `json:"book_ref"`
	FlightID           int64  `json:"flight_id"`
	FlightNo           string `json:"flight_no"`
	DepartureAirport   string `json:"departure_airport"`
	ArrivalAirport     string `json:"arrival_airport"`
	ScheduledDeparture string `json:"scheduled_departure"`
	ScheduledArrival   string `json:"scheduled_arrival"`
	FareConditions     string `json:"fare_conditions"`
}

// UserFlightInfo returns the passenger's booked tickets joined with their
// flights, formatted for prompt injection. An unknown passenger yields an
// empty string, not an error.
func (s *Store) UserFlightInfo(ctx context.Context, passengerID string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.ticket_no, t.book_ref,
		       f.flight_id, f.flight_no, f.departure_airport, f.arrival_airport,
		       f.scheduled_departure, f.scheduled_arrival, tf.fare_conditions
		FROM tickets t
		JOIN ticket_flights tf ON tf.ticket_no = t.ticket_no
		JOIN flights f ON f.flight_id = tf.flight_id
		WHERE t.passenger_id = ?
		ORDER BY f.scheduled_departure`, passengerID)
	if err != nil {
		return "", errx.WrapDB(err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var ti TicketInfo
		if err := rows.Scan(&ti.TicketNo, &ti.BookRef, &ti.FlightID, &ti.FlightNo,
			&ti.DepartureAirport, &ti.ArrivalAirport, &ti.ScheduledDeparture,
			&ti.ScheduledArrival, &ti.FareConditions); err != nil {
			return "", errx.WrapDB(err)
		}
		fmt.Fprintf(&b, "ticket %s (%s): flight %s %s->%s departs %s arrives %s, fare %s\n",
			ti.TicketNo, ti.BookRef, ti.FlightNo, ti.DepartureAirport, ti.ArrivalAirport,
			ti.ScheduledDeparture, ti.ScheduledArrival, ti.FareConditions)
	}
	if err := rows.Err(); err != nil {
		return "", errx.WrapDB(err)
	}
	return b.String(), nil
}

// Flight is a searchable scheduled flight.
type Flight struct {
	FlightID           int64  `json:"flight_id"`
	FlightNo           string `json:"flight_no"`
	DepartureAirport   string `json:"departure_airport"`
	ArrivalAirport     string `json:"arrival_airport"`
	ScheduledDeparture string `json:"scheduled_departure"`
	ScheduledArrival   string `json:"scheduled_arrival"`
	Status             string `json:"status"`
}

// FlightQuery filters SearchFlights; empty fields are ignored.
type FlightQuery struct {
	DepartureAirport string
	ArrivalAirport   string
	StartTime        string
	EndTime          string
	Limit            int
}

func (s *Store) SearchFlights(ctx context.Context, q FlightQuery) ([]Flight, error) {
	query := "SELECT flight_id, flight_no, departure_airport, arrival_airport, scheduled_departure, scheduled_arrival, status FROM flights WHERE 1=1"
	var args []any
	if q.DepartureAirport != "" {
		query += " AND departure_airport = ?"
		args = append(args, strings.ToUpper(q.DepartureAirport))
	}
	if q.ArrivalAirport != "" {
		query += " AND arrival_airport = ?"
		args = append(args, strings.ToUpper(q.ArrivalAirport))
	}
	if q.StartTime != "" {
		query += " AND scheduled_departure >= ?"
		args = append(args, q.StartTime)
	}
	if q.EndTime != "" {
		query += " AND scheduled_departure <= ?"
		args = append(args, q.EndTime)
	}
	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query += " ORDER BY scheduled_departure LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errx.WrapDB(err)
	}
	defer rows.Close()

	var out []Flight
	for rows.Next() {
		var f Flight
		if err := rows.Scan(&f.FlightID, &f.FlightNo, &f.DepartureAirport, &f.ArrivalAirport,
			&f.ScheduledDeparture, &f.ScheduledArrival, &f.Status); err != nil {
			return nil, errx.WrapDB(err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateTicket moves a passenger's ticket onto another flight. The target
// flight must exist and depart at least MinRescheduleNotice from now, and the
// ticket must belong to the passenger.
func (s *Store) UpdateTicket(ctx context.Context, passengerID, ticketNo string, newFlightID int64) error {
	var departure string
	err := s.db.QueryRowContext(ctx,
		"SELECT scheduled_departure FROM flights WHERE flight_id = ?", newFlightID).Scan(&departure)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no flight found with id %d", newFlightID)
	}
	if err != nil {
		return errx.WrapDB(err)
	}
	dep, err := time.Parse(time.RFC3339, departure)
	if err != nil {
		return fmt.Errorf("parse departure %q: %w", departure, err)
	}
	if until := time.Until(dep); until < MinRescheduleNotice {
		return fmt.Errorf("cannot reschedule to a flight departing in %s; must be at least %s away", until.Round(time.Minute), MinRescheduleNotice)
	}

	if err := s.requireOwnedTicket(ctx, passengerID, ticketNo); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE ticket_flights SET flight_id = ? WHERE ticket_no = ?", newFlightID, ticketNo); err != nil {
		return errx.WrapDB(err)
	}
	return nil
}

// CancelTicket removes a passenger's ticket.
func (s *Store) CancelTicket(ctx context.Context, passengerID, ticketNo string) error {
	if err := s.requireOwnedTicket(ctx, passengerID, ticketNo); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM ticket_flights WHERE ticket_no = ?", ticketNo); err != nil {
		return errx.WrapDB(err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tickets WHERE ticket_no = ?", ticketNo); err != nil {
		return errx.WrapDB(err)
	}
	return nil
}

func (s *Store) requireOwnedTicket(ctx context.Context, passengerID, ticketNo string) error {
	var owner string
	err := s.db.QueryRowContext(ctx,
		"SELECT passenger_id FROM tickets WHERE ticket_no = ?", ticketNo).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no ticket found with number %s", ticketNo)
	}
	if err != nil {
		return errx.WrapDB(err)
	}
	if owner != passengerID {
		return fmt.Errorf("ticket %s does not belong to passenger %s", ticketNo, passengerID)
	}
	return nil
}

// Rental is a car rental offer.
type Rental struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	PriceTier string `json:"price_tier"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Booked    bool   `json:"booked"`
}

// RentalQuery filters SearchCarRentals; empty fields are ignored and string
// fields match as substrings, mirroring how customers describe what they want.
type RentalQuery struct {
	Location  string
	Name      string
	PriceTier string
}

func (s *Store) SearchCarRentals(ctx context.Context, q RentalQuery) ([]Rental, error) {
	query := "SELECT id, name, location, price_tier, start_date, end_date, booked FROM car_rentals WHERE 1=1"
	var args []any
	query, args = appendLike(query, args, "location", q.Location)
	query, args = appendLike(query, args, "name", q.Name)
	query, args = appendLike(query, args, "price_tier", q.PriceTier)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errx.WrapDB(err)
	}
	defer rows.Close()

	var out []Rental
	for rows.Next() {
		var r Rental
		var booked int
		if err := rows.Scan(&r.ID, &r.Name, &r.Location, &r.PriceTier, &r.StartDate, &r.EndDate, &booked); err != nil {
			return nil, errx.WrapDB(err)
		}
		r.Booked = booked != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) BookCarRental(ctx context.Context, id int64) error {
	return s.setBooked(ctx, "car_rentals", id, true)
}

func (s *Store) CancelCarRental(ctx context.Context, id int64) error {
	return s.setBooked(ctx, "car_rentals", id, false)
}

// UpdateCarRental changes the dates on a rental; empty values leave the
// current ones in place.
func (s *Store) UpdateCarRental(ctx context.Context, id int64, startDate, endDate string) error {
	if startDate == "" && endDate == "" {
		return fmt.Errorf("no new dates provided for car rental %d", id)
	}
	if startDate != "" {
		if err := s.updateColumn(ctx, "car_rentals", "start_date", startDate, id); err != nil {
			return err
		}
	}
	if endDate != "" {
		if err := s.updateColumn(ctx, "car_rentals", "end_date", endDate, id); err != nil {
			return err
		}
	}
	return nil
}

// Hotel is a bookable hotel stay.
type Hotel struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	PriceTier    string `json:"price_tier"`
	CheckinDate  string `json:"checkin_date"`
	CheckoutDate string `json:"checkout_date"`
	Booked       bool   `json:"booked"`
}

type HotelQuery struct {
	Location  string
	Name      string
	PriceTier string
}

func (s *Store) SearchHotels(ctx context.Context, q HotelQuery) ([]Hotel, error) {
	query := "SELECT id, name, location, price_tier, checkin_date, checkout_date, booked FROM hotels WHERE 1=1"
	var args []any
	query, args = appendLike(query, args, "location", q.Location)
	query, args = appendLike(query, args, "name", q.Name)
	query, args = appendLike(query, args, "price_tier", q.PriceTier)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errx.WrapDB(err)
	}
	defer rows.Close()

	var out []Hotel
	for rows.Next() {
		var h Hotel
		var booked int
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.PriceTier, &h.CheckinDate, &h.CheckoutDate, &booked); err != nil {
			return nil, errx.WrapDB(err)
		}
		h.Booked = booked != 0
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) BookHotel(ctx context.Context, id int64) error {
	return s.setBooked(ctx, "hotels", id, true)
}

func (s *Store) CancelHotel(ctx context.Context, id int64) error {
	return s.setBooked(ctx, "hotels", id, false)
}

func (s *Store) UpdateHotel(ctx context.Context, id int64, checkinDate, checkoutDate string) error {
	if checkinDate == "" && checkoutDate == "" {
		return fmt.Errorf("no new dates provided for hotel %d", id)
	}
	if checkinDate != "" {
		if err := s.updateColumn(ctx, "hotels", "checkin_date", checkinDate, id); err != nil {
			return err
		}
	}
	if checkoutDate != "" {
		if err := s.updateColumn(ctx, "hotels", "checkout_date", checkoutDate, id); err != nil {
			return err
		}
	}
	return nil
}

// Excursion is a bookable trip recommendation.
type Excursion struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Keywords string `json:"keywords"`
	Details  string `json:"details"`
	Booked   bool   `json:"booked"`
}

type ExcursionQuery struct {
	Location string
	Name     string
	Keywords string
}

func (s *Store) SearchExcursions(ctx context.Context, q ExcursionQuery) ([]Excursion, error) {
	query := "SELECT id, name, location, keywords, details, booked FROM trip_recommendations WHERE 1=1"
	var args []any
	query, args = appendLike(query, args, "location", q.Location)
	query, args = appendLike(query, args, "name", q.Name)
	for _, kw := range strings.Split(q.Keywords, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		query += " AND keywords LIKE ?"
		args = append(args, "%"+kw+"%")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errx.WrapDB(err)
	}
	defer rows.Close()

	var out []Excursion
	for rows.Next() {
		var e Excursion
		var booked int
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.Keywords, &e.Details, &booked); err != nil {
			return nil, errx.WrapDB(err)
		}
		e.Booked = booked != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) BookExcursion(ctx context.Context, id int64) error {
	return s.setBooked(ctx, "trip_recommendations", id, true)
}

func (s *Store) CancelExcursion(ctx context.Context, id int64) error {
	return s.setBooked(ctx, "trip_recommendations", id, false)
}

func (s *Store) UpdateExcursion(ctx context.Context, id int64, details string) error {
	if strings.TrimSpace(details) == "" {
		return fmt.Errorf("no new details provided for excursion %d", id)
	}
	return s.updateColumn(ctx, "trip_recommendations", "details", details, id)
}

func (s *Store) setBooked(ctx context.Context, table string, id int64, booked bool) error {
	v := 0
	if booked {
		v = 1
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET booked = ? WHERE id = ?", table), v, id)
	if err != nil {
		return errx.WrapDB(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errx.WrapDB(err)
	}
	if n == 0 {
		return fmt.Errorf("no %s entry found with id %d", table, id)
	}
	return nil
}

func (s *Store) updateColumn(ctx context.Context, table, column, value string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column), value, id)
	if err != nil {
		return errx.WrapDB(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errx.WrapDB(err)
	}
	if n == 0 {
		return fmt.Errorf("no %s entry found with id %d", table, id)
	}
	return nil
}

func appendLike(query string, args []any, column, value string) (string, []any) {
	if strings.TrimSpace(value) == "" {
		return query, args
	}
	return query + " AND " + column + " LIKE ?", append(args, "%"+strings.TrimSpace(value)+"%")
}
