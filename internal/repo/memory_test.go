package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airport-ops/internal/domain"
)

func traveller(email string) domain.User {
	return domain.NewTraveller(domain.UserParams{
		Name: "Jane Citizen", Age: 30, Email: email, Mobile: "0412345678", PasswordHash: "x",
	}, time.Now())
}

func TestMemory_GetMissing(t *testing.T) {
	r := NewUserMemory()
	_, err := r.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.ID)
}

func TestMemory_AddGetRemove(t *testing.T) {
	ctx := context.Background()
	r := NewUserMemory()
	u := traveller("a@b.com")

	require.NoError(t, r.Add(ctx, u))
	got, err := r.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, r.Remove(ctx, u.ID))
	require.NoError(t, r.Remove(ctx, u.ID), "remove is idempotent")
	_, err = r.Get(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err))

	// 删除后 email 可以重新使用
	assert.NoError(t, r.AddUnique(ctx, traveller("a@b.com")))
}

func TestMemory_AddOverwrites(t *testing.T) {
	ctx := context.Background()
	r := NewUserMemory()
	u := traveller("a@b.com")
	require.NoError(t, r.Add(ctx, u))

	u.Name = "Changed"
	require.NoError(t, r.Update(ctx, u))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Changed", all[0].Name)
}

func TestMemory_AddUniqueConflict(t *testing.T) {
	ctx := context.Background()
	r := NewUserMemory()
	require.NoError(t, r.AddUnique(ctx, traveller("a@b.com")))

	err := r.AddUnique(ctx, traveller("a@b.com"))
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	var ce *domain.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "email", ce.Field)
	assert.Equal(t, "a@b.com", ce.Value)

	all, _ := r.List(ctx)
	assert.Len(t, all, 1)
}

func TestMemory_AddUniqueSameIDIsUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewUserMemory()
	u := traveller("a@b.com")
	require.NoError(t, r.AddUnique(ctx, u))
	u.Age = 31
	require.NoError(t, r.AddUnique(ctx, u))

	got, err := r.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 31, got.Age)
}

func TestMemory_UpdateReindexesKey(t *testing.T) {
	ctx := context.Background()
	r := NewUserMemory()
	u := traveller("old@b.com")
	require.NoError(t, r.AddUnique(ctx, u))

	u.Email = "new@b.com"
	require.NoError(t, r.Update(ctx, u))

	assert.NoError(t, r.AddUnique(ctx, traveller("old@b.com")))
	assert.True(t, domain.IsConflict(r.AddUnique(ctx, traveller("new@b.com"))))
}

func TestMemory_ListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	r := NewUserMemory()
	ff := domain.NewFrequentFlyer(domain.UserParams{
		Name: "Sam", Age: 40, Email: "s@b.com", Mobile: "0412345678", PasswordHash: "x",
	}, 123456, 100, time.Now())
	require.NoError(t, r.Add(ctx, ff))

	all, err := r.List(ctx)
	require.NoError(t, err)
	all[0].FrequentFlyer.Points = 999
	all[0].Name = "Mutated"

	got, err := r.Get(ctx, ff.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.FrequentFlyer.Points)
	assert.Equal(t, "Sam", got.Name)
}

func TestMemory_ConcurrentAddUnique(t *testing.T) {
	ctx := context.Background()
	r := NewFlightMemory()

	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := domain.NewFlight(domain.FlightParams{
				AirlineCode: "QFA", FlightCode: fmt.Sprintf("QF%03d", i), PlaneID: "QFA1A",
				City: "Sydney", Direction: domain.DirectionArrival, ScheduledUTC: time.Now(),
			}, time.Now())
			err := r.AddUnique(ctx, f)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if domain.IsConflict(err) {
				dupes++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dupes)
	all, _ := r.List(ctx)
	assert.Len(t, all, 1)
}
