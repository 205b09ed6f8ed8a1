package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/courtsched/fixtures"
	"github.com/Dosada05/courtsched/models"
)

func TestAdmissible(t *testing.T) {
	p := fixtures.New(7)
	court := uuid.New()
	existing := []models.Booking{
		p.Booking(court, 9*60, 10*60, models.BookingConfirmed),
		p.Booking(court, 12*60, 13*60, models.BookingCancelled),
	}

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"same as confirmed", span(9, 0, 10, 0), false},
		{"same as cancelled", span(12, 0, 13, 0), true},
		{"touching confirmed end", span(10, 0, 11, 0), true},
		{"touching confirmed start", span(8, 0, 9, 0), true},
		{"inside confirmed", span(9, 15, 9, 45), false},
		{"covering confirmed", span(8, 0, 11, 0), false},
		{"free afternoon", span(15, 0, 16, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Admissible(existing, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAdmissibleWithNoBookings(t *testing.T) {
	ok, err := Admissible(nil, span(9, 0, 10, 0))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdmissibleRejectsInvalidCandidate(t *testing.T) {
	ok, err := Admissible(nil, span(10, 0, 10, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.False(t, ok)
}

func TestConflictingBookingsReturnsOnlyConfirmedClashes(t *testing.T) {
	p := fixtures.New(11)
	court := uuid.New()
	first := p.Booking(court, 9*60, 10*60, models.BookingConfirmed)
	second := p.Booking(court, 10*60, 11*60, models.BookingConfirmed)
	cancelled := p.Booking(court, 9*60+30, 10*60+30, models.BookingCancelled)

	clashes, err := ConflictingBookings([]models.Booking{first, second, cancelled}, span(9, 30, 10, 30))
	require.NoError(t, err)
	require.Len(t, clashes, 2)
	assert.Equal(t, first.ID, clashes[0].ID)
	assert.Equal(t, second.ID, clashes[1].ID)
}

func TestAdmissibleSurfacesCorruptStoredBooking(t *testing.T) {
	p := fixtures.New(3)
	broken := p.Booking(uuid.New(), 11*60, 10*60, models.BookingConfirmed)

	_, err := Admissible([]models.Booking{broken}, span(9, 0, 10, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
