package travel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Seed())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserFlightInfo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.UserFlightInfo(ctx, "3442 587242")
	require.NoError(t, err)
	assert.Contains(t, info, "LX0112")
	assert.Contains(t, info, "7240005432906569")

	empty, err := s.UserFlightInfo(ctx, "0000 000000")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSearchFlights(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flights, err := s.SearchFlights(ctx, FlightQuery{DepartureAirport: "zrh"})
	require.NoError(t, err)
	require.NotEmpty(t, flights)
	for _, f := range flights {
		assert.Equal(t, "ZRH", f.DepartureAirport)
	}

	none, err := s.SearchFlights(ctx, FlightQuery{DepartureAirport: "JFK"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCancelTicketRequiresOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.CancelTicket(ctx, "8149 604011", "7240005432906569")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")

	require.NoError(t, s.CancelTicket(ctx, "3442 587242", "7240005432906569"))
	info, err := s.UserFlightInfo(ctx, "3442 587242")
	require.NoError(t, err)
	assert.NotContains(t, info, "7240005432906569")
}

func TestCancelTicketUnknown(t *testing.T) {
	s := newTestStore(t)
	err := s.CancelTicket(context.Background(), "3442 587242", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ticket found")
}

func TestUpdateTicketRejectsUnknownFlight(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateTicket(context.Background(), "3442 587242", "7240005432906569", 999999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no flight found")
}

func TestUpdateTicketMovesBooking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// seeded flights depart in 2027, comfortably past the notice window
	require.NoError(t, s.UpdateTicket(ctx, "3442 587242", "7240005432906569", 1005))
	info, err := s.UserFlightInfo(ctx, "3442 587242")
	require.NoError(t, err)
	assert.Contains(t, info, "LX1612")
}

func TestCarRentalLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rentals, err := s.SearchCarRentals(ctx, RentalQuery{Location: "Basel"})
	require.NoError(t, err)
	require.NotEmpty(t, rentals)

	id := rentals[0].ID
	require.NoError(t, s.BookCarRental(ctx, id))
	booked, err := s.SearchCarRentals(ctx, RentalQuery{Location: "Basel"})
	require.NoError(t, err)
	assert.True(t, booked[0].Booked)

	require.NoError(t, s.UpdateCarRental(ctx, id, "2027-03-13", ""))
	require.NoError(t, s.CancelCarRental(ctx, id))

	err = s.BookCarRental(ctx, 999)
	require.Error(t, err)
}

func TestHotelLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hotels, err := s.SearchHotels(ctx, HotelQuery{Location: "Zurich"})
	require.NoError(t, err)
	require.Len(t, hotels, 1)

	require.NoError(t, s.BookHotel(ctx, hotels[0].ID))
	require.NoError(t, s.UpdateHotel(ctx, hotels[0].ID, "", "2027-03-16"))
	require.NoError(t, s.CancelHotel(ctx, hotels[0].ID))

	require.Error(t, s.UpdateHotel(ctx, hotels[0].ID, "", ""))
}

func TestExcursionSearchByKeyword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trips, err := s.SearchExcursions(ctx, ExcursionQuery{Keywords: "scenic"})
	require.NoError(t, err)
	require.Len(t, trips, 2)

	require.NoError(t, s.BookExcursion(ctx, trips[0].ID))
	require.NoError(t, s.UpdateExcursion(ctx, trips[0].ID, "Private cruise upgrade."))
	require.NoError(t, s.CancelExcursion(ctx, trips[0].ID))
}
