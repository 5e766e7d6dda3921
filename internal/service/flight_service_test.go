package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airport-ops/internal/core/cache"
	"airport-ops/internal/core/metrics"
	"airport-ops/internal/domain"
	"airport-ops/internal/repo"
)

func at(hour int) time.Time { return time.Date(2025, 4, 1, hour, 0, 0, 0, time.UTC) }

func arrival(plane string, sched time.Time) RegisterArrivalRequest {
	return RegisterArrivalRequest{
		AirlineCode: "QFA", FlightCode: "QF101", DepartureCity: "Sydney",
		PlaneID: plane, ScheduledArrivalUTC: sched,
	}
}

func departure(plane string, sched time.Time) RegisterDepartureRequest {
	return RegisterDepartureRequest{
		AirlineCode: "VOZ", FlightCode: "VA202", ArrivalCity: "Perth",
		PlaneID: plane, ScheduledDepartureUTC: sched,
	}
}

func TestRegisterFlight_PlaneIDUniqueAcrossDirections(t *testing.T) {
	ctx := context.Background()
	svc, flights, m := newFlightService(FlightOptions{})

	res, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)
	assert.NotEmpty(t, res.FlightID)

	_, err = svc.RegisterDeparture(ctx, departure("QFA1A", at(10)))
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	var ce *domain.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "QFA1A", ce.Value)

	all, _ := flights.List(ctx)
	assert.Len(t, all, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlightsRegistered.WithLabelValues("departure", metrics.OutcomeConflict)))
}

func TestRegisterFlight_Canonicalizes(t *testing.T) {
	ctx := context.Background()
	svc, flights, _ := newFlightService(FlightOptions{})

	brisbane := time.FixedZone("AEST", 10*3600)
	res, err := svc.RegisterArrival(ctx, RegisterArrivalRequest{
		AirlineCode: "qfa", FlightCode: " QF101 ", DepartureCity: "sYdNeY",
		PlaneID: "QFA12A ", ScheduledArrivalUTC: time.Date(2025, 4, 1, 19, 0, 0, 0, brisbane),
	})
	require.NoError(t, err)

	f, err := flights.Get(ctx, res.FlightID)
	require.NoError(t, err)
	assert.Equal(t, "QFA", f.AirlineCode)
	assert.Equal(t, "QF101", f.FlightCode)
	assert.Equal(t, "Sydney", f.City)
	assert.Equal(t, "QFA12A", f.PlaneID)
	assert.Equal(t, domain.DirectionArrival, f.Direction)
	assert.Equal(t, domain.StatusScheduled, f.Status)
	assert.Equal(t, at(9), f.ScheduledUTC)
}

func TestRegisterFlight_Validation(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*RegisterArrivalRequest)
	}{
		{"airlineCode", func(r *RegisterArrivalRequest) { r.AirlineCode = "BAW" }},
		{"departureCity", func(r *RegisterArrivalRequest) { r.DepartureCity = "Hobart" }},
		{"flightCode", func(r *RegisterArrivalRequest) { r.FlightCode = "Q1" }},
		{"flightCode", func(r *RegisterArrivalRequest) { r.FlightCode = "QF1234" }},
		{"flightCode", func(r *RegisterArrivalRequest) { r.FlightCode = "qf123" }},
		{"planeId", func(r *RegisterArrivalRequest) { r.PlaneID = "QFA1X" }},
		{"planeId", func(r *RegisterArrivalRequest) { r.PlaneID = "QFAA" }},
		{"scheduledUtc", func(r *RegisterArrivalRequest) { r.ScheduledArrivalUTC = time.Time{} }},
	}
	for _, c := range cases {
		t.Run(c.field, func(t *testing.T) {
			ctx := context.Background()
			svc, flights, _ := newFlightService(FlightOptions{})
			req := arrival("QFA1A", at(9))
			c.mutate(&req)

			_, err := svc.RegisterArrival(ctx, req)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, c.field, ve.Field)
			all, _ := flights.List(ctx)
			assert.Empty(t, all)
		})
	}

	svc, _, _ := newFlightService(FlightOptions{})
	_, err := svc.RegisterDeparture(context.Background(), RegisterDepartureRequest{
		AirlineCode: "JST", FlightCode: "JQ100", ArrivalCity: "Narnia", PlaneID: "JST1D", ScheduledDepartureUTC: at(1),
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "arrivalCity", ve.Field)
}

func TestListFlights_OrderedBySchedule(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlightService(FlightOptions{})

	arr, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)
	dep, err := svc.RegisterDeparture(ctx, departure("VOZ2D", at(8)))
	require.NoError(t, err)

	board, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, dep.FlightID, board[0].ID)
	assert.Equal(t, domain.DirectionDeparture, board[0].Direction)
	assert.Equal(t, "Virgin Australia", board[0].AirlineName)
	assert.Equal(t, arr.FlightID, board[1].ID)
	assert.Equal(t, domain.DirectionArrival, board[1].Direction)
	assert.Equal(t, "Qantas", board[1].AirlineName)

	arrivals, err := svc.ListFlightsByDirection(ctx, domain.DirectionArrival)
	require.NoError(t, err)
	require.Len(t, arrivals, 1)
	assert.Equal(t, arr.FlightID, arrivals[0].ID)

	departures, err := svc.ListFlightsByDirection(ctx, domain.Direction(" Departure "))
	require.NoError(t, err)
	require.Len(t, departures, 1)
	assert.Equal(t, dep.FlightID, departures[0].ID)

	_, err = svc.ListFlightsByDirection(ctx, domain.Direction("sideways"))
	assert.True(t, domain.IsValidation(err))
}

func TestListFlights_TieBreak(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlightService(FlightOptions{})
	for i, code := range []string{"QF300", "QF100", "QF200"} {
		req := arrival(fmt.Sprintf("QFA%dA", i), at(9))
		req.FlightCode = code
		_, err := svc.RegisterArrival(ctx, req)
		require.NoError(t, err)
	}
	board, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	var codes []string
	for _, v := range board {
		codes = append(codes, v.FlightCode)
	}
	assert.Equal(t, []string{"QF100", "QF200", "QF300"}, codes)
}

func TestDelayFlight(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 7, 0, 0, 0, time.UTC)
	svc, _, m := newFlightService(FlightOptions{Now: func() time.Time { return now }})

	res, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)

	v, err := svc.DelayFlight(ctx, res.FlightID, 45*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, at(9).Add(45*time.Minute), v.ScheduledUTC)
	assert.Equal(t, domain.StatusDelayed, v.Status)

	board, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, at(9).Add(45*time.Minute), board[0].ScheduledUTC)
	assert.Equal(t, domain.StatusDelayed, board[0].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlightDelays))
}

func TestDelayFlight_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlightService(FlightOptions{})
	res, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)

	_, err = svc.DelayFlight(ctx, res.FlightID, 0)
	assert.True(t, domain.IsValidation(err))
	_, err = svc.DelayFlight(ctx, res.FlightID, -time.Minute)
	assert.True(t, domain.IsValidation(err))
	_, err = svc.DelayFlight(ctx, "missing", time.Minute)
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.DelayFlightByPlane(ctx, "ZZZ9A", time.Minute)
	assert.True(t, domain.IsNotFound(err))
}

func TestDelayFlightByPlane(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlightService(FlightOptions{})
	_, err := svc.RegisterDeparture(ctx, departure("VOZ2D", at(8)))
	require.NoError(t, err)

	v, err := svc.DelayFlightByPlane(ctx, " VOZ2D ", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "VOZ2D", v.PlaneID)
	assert.Equal(t, at(8).Add(15*time.Minute), v.ScheduledUTC)
}

func TestDelayFlight_ConcurrentDelaysAccumulate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlightService(FlightOptions{})
	res, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DelayFlight(ctx, res.FlightID, time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	board, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	assert.Equal(t, at(9).Add(10*time.Minute), board[0].ScheduledUTC)
}

func TestListFlights_BoardCache(t *testing.T) {
	ctx := context.Background()
	board := newMapBoard()
	svc, _, _ := newFlightService(FlightOptions{Board: board, BoardTTL: time.Minute})

	res, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := svc.ListFlights(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].ScheduledUTC.Equal(at(9)))
	}
	assert.Equal(t, 1, board.loads)

	_, err = svc.DelayFlight(ctx, res.FlightID, time.Hour)
	require.NoError(t, err)
	got, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelayed, got[0].Status)
	assert.Equal(t, 2, board.loads)
	assert.Equal(t, 2, board.bumps)
}

// gatedFlights snapshots on the first List and then holds it, so a board load can straddle a write.
type gatedFlights struct {
	domain.FlightRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedFlights) List(ctx context.Context) ([]domain.Flight, error) {
	snap, err := g.FlightRepository.List(ctx)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return snap, err
}

func TestListFlights_RedisBoardSurvivesRacingLoad(t *testing.T) {
	mr := miniredis.RunT(t)
	board := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = board.Close() })

	flights := &gatedFlights{
		FlightRepository: repo.NewFlightMemory(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	svc := NewFlightService(flights, FlightOptions{Board: board, BoardTTL: time.Minute}, nil, nil)
	ctx := context.Background()

	early := make(chan []FlightView, 1)
	go func() {
		v, err := svc.ListFlights(ctx)
		assert.NoError(t, err)
		early <- v
	}()
	<-flights.entered

	res, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)
	close(flights.release)
	assert.Empty(t, <-early, "the racing load saw the store before the write")

	got, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, res.FlightID, got[0].ID)

	_, err = svc.DelayFlight(ctx, res.FlightID, 30*time.Minute)
	require.NoError(t, err)
	got, err = svc.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusDelayed, got[0].Status)
	assert.True(t, got[0].ScheduledUTC.Equal(at(9).Add(30*time.Minute)))
}

func TestListFlights_RedisDownReadsStore(t *testing.T) {
	board := cache.NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	}), "test:")
	t.Cleanup(func() { _ = board.Close() })

	svc, _, _ := newFlightService(FlightOptions{Board: board})
	ctx := context.Background()
	_, err := svc.RegisterArrival(ctx, arrival("QFA1A", at(9)))
	require.NoError(t, err)

	got, err := svc.ListFlights(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListFlights_StoreError(t *testing.T) {
	down := errors.New("db down")
	svc := NewFlightService(brokenRepo[domain.Flight]{err: down}, FlightOptions{}, nil, nil)
	_, err := svc.ListFlights(context.Background())
	assert.ErrorIs(t, err, down)
	_, err = svc.RegisterArrival(context.Background(), arrival("QFA1A", at(9)))
	assert.ErrorIs(t, err, down)
	assert.False(t, domain.IsConflict(err))
}
