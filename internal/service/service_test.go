package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"airport-ops/internal/core/metrics"
	"airport-ops/internal/domain"
	"airport-ops/internal/repo"
)

// tickClock returns a clock that advances one second per call.
func tickClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newUserService(opts UserOptions) (*UserService, *repo.Memory[domain.User], *metrics.Metrics) {
	users := repo.NewUserMemory()
	m := metrics.New(prometheus.NewRegistry())
	if opts.Now == nil {
		opts.Now = tickClock(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	}
	return NewUserService(users, BcryptHasher{Cost: bcrypt.MinCost}, opts, nil, m), users, m
}

func newFlightService(opts FlightOptions) (*FlightService, *repo.Memory[domain.Flight], *metrics.Metrics) {
	flights := repo.NewFlightMemory()
	m := metrics.New(prometheus.NewRegistry())
	return NewFlightService(flights, opts, nil, m), flights, m
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }
func (failingHasher) Compare(string, string) bool { return false }

// brokenRepo fails every call; it stands in for an unreachable database.
type brokenRepo[T any] struct{ err error }

func (r brokenRepo[T]) Get(context.Context, string) (T, error) { var z T; return z, r.err }
func (r brokenRepo[T]) Add(context.Context, T) error           { return r.err }
func (r brokenRepo[T]) Update(context.Context, T) error        { return r.err }
func (r brokenRepo[T]) Remove(context.Context, string) error   { return r.err }
func (r brokenRepo[T]) List(context.Context) ([]T, error)      { return nil, r.err }
func (r brokenRepo[T]) AddUnique(context.Context, T) error     { return r.err }

// mapBoard is an in-process cache.Store.
type mapBoard struct {
	mu    sync.Mutex
	m     map[string][]byte
	gens  map[string]int64
	loads int
	bumps int
}

func newMapBoard() *mapBoard { return &mapBoard{m: map[string][]byte{}, gens: map[string]int64{}} }

func (b *mapBoard) GetOrLoad(ctx context.Context, key string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.m[key]; ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	b.loads++
	b.m[key] = v
	return v, nil
}

func (b *mapBoard) Version(_ context.Context, key string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gens[key], nil
}

func (b *mapBoard) Bump(_ context.Context, key string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bumps++
	b.gens[key]++
	return b.gens[key], nil
}
