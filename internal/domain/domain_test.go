package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAirlinesAndCities(t *testing.T) {
	c, ok := CanonicalAirline(" qfa ")
	require.True(t, ok)
	assert.Equal(t, "QFA", c)
	assert.Equal(t, "Qantas", AirlineName("qfa"))
	assert.False(t, IsAllowedAirline("ZZZ"))
	assert.Empty(t, AirlineName("ZZZ"))

	city, ok := CanonicalCity("pErTh")
	require.True(t, ok)
	assert.Equal(t, "Perth", city)
	assert.False(t, IsAllowedCity("Hobart"))

	pts, ok := CityPoints("melbourne")
	require.True(t, ok)
	assert.Equal(t, 1750, pts)

	assert.Equal(t, []string{"FRE", "JST", "QFA", "RXA", "VOZ"}, AirlineCodes())
	assert.Equal(t, []string{"Adelaide", "Melbourne", "Perth", "Rockhampton", "Sydney"}, Cities())
}

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection(" Arrival")
	assert.True(t, ok)
	assert.Equal(t, DirectionArrival, d)
	d, ok = ParseDirection("DEPARTURE")
	assert.True(t, ok)
	assert.Equal(t, DirectionDeparture, d)
	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}

func TestFlightDelayBy(t *testing.T) {
	sched := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("AEST", 10*3600))
	f := NewFlight(FlightParams{
		AirlineCode: "QFA", FlightCode: "QF123", PlaneID: "QFA1A",
		City: "Sydney", Direction: DirectionArrival, ScheduledUTC: sched,
	}, sched)
	assert.Equal(t, StatusScheduled, f.Status)
	assert.Equal(t, time.UTC, f.ScheduledUTC.Location())
	assert.NotEmpty(t, f.ID)

	later := sched.Add(time.Hour)
	f.DelayBy(30*time.Minute, later)
	assert.Equal(t, StatusDelayed, f.Status)
	assert.True(t, f.ScheduledUTC.Equal(sched.Add(30*time.Minute)))
	assert.True(t, f.UpdatedAt.Equal(later))
}

func TestUserVariants(t *testing.T) {
	p := UserParams{Name: "Ann", Age: 20, Email: "a@b.com", Mobile: "0412345678", PasswordHash: "h"}
	now := time.Now()

	tr := NewTraveller(p, now)
	assert.Equal(t, RoleTraveller, tr.Role)
	assert.Nil(t, tr.FrequentFlyer)
	assert.Nil(t, tr.Manager)

	ff := NewFrequentFlyer(p, 123456, 10, now)
	require.NotNil(t, ff.FrequentFlyer)
	assert.Equal(t, 123456, ff.FrequentFlyer.Number)

	m := NewManager(p, "1234", now)
	require.NotNil(t, m.Manager)
	assert.Equal(t, "1234", m.Manager.StaffID)

	assert.NotEqual(t, tr.ID, ff.ID)
	assert.True(t, RoleManager.Valid())
	assert.False(t, Role("pilot").Valid())
}

func TestUserClone(t *testing.T) {
	p := UserParams{Name: "Ann", Age: 20, Email: "a@b.com", Mobile: "0412345678", PasswordHash: "h"}
	ff := NewFrequentFlyer(p, 123456, 10, time.Now())
	c := ff.Clone()
	c.FrequentFlyer.Points = 500
	assert.Equal(t, 10, ff.FrequentFlyer.Points)
}

func TestChangePassword(t *testing.T) {
	u := NewTraveller(UserParams{Name: "Ann", PasswordHash: "old"}, time.Now().Add(-time.Hour))
	now := time.Now()
	u.ChangePassword("new", now)
	assert.Equal(t, "new", u.PasswordHash)
	assert.True(t, u.UpdatedAt.Equal(now))
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", NewConflictError("user", "email", "a@b.com"))
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, `register: user with email "a@b.com" already exists`, wrapped.Error())

	var ve *ValidationError
	require.True(t, errors.As(fmt.Errorf("x: %w", NewValidationError("age", "out of range")), &ve))
	assert.Equal(t, "age", ve.Field)
	assert.Equal(t, "invalid age: out of range", ve.Error())

	assert.Equal(t, `flight "f1" not found`, NewNotFoundError("flight", "f1").Error())
	assert.True(t, IsUnauthorized(&UnauthorizedError{}))
	assert.Equal(t, "unauthorized", (&UnauthorizedError{}).Error())
}
