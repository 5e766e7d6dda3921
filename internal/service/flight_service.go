package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"airport-ops/internal/core/cache"
	"airport-ops/internal/core/metrics"
	"airport-ops/internal/domain"
	"airport-ops/internal/validation"
)

// 航班看板缓存 key 为 board:<代数>
const (
	boardKey    = "board"
	boardGenKey = "board:gen"
)

type RegisterArrivalRequest struct {
	AirlineCode         string
	FlightCode          string
	DepartureCity       string // 出发城市
	PlaneID             string
	ScheduledArrivalUTC time.Time
}

type RegisterDepartureRequest struct {
	AirlineCode           string
	FlightCode            string
	ArrivalCity           string // 到达城市
	PlaneID               string
	ScheduledDepartureUTC time.Time
}

type RegisterFlightResponse struct {
	FlightID string `json:"flightId"`
}

// FlightView 航班看板的读模型
type FlightView struct {
	ID           string              `json:"id"`
	AirlineCode  string              `json:"airlineCode"`
	AirlineName  string              `json:"airlineName"`
	FlightCode   string              `json:"flightCode"`
	PlaneID      string              `json:"planeId"`
	City         string              `json:"city"`
	Direction    domain.Direction    `json:"direction"`
	ScheduledUTC time.Time           `json:"scheduledUtc"`
	Status       domain.FlightStatus `json:"status"`
}

func viewOf(f domain.Flight) FlightView {
	return FlightView{
		ID:           f.ID,
		AirlineCode:  f.AirlineCode,
		AirlineName:  domain.AirlineName(f.AirlineCode),
		FlightCode:   f.FlightCode,
		PlaneID:      f.PlaneID,
		City:         f.City,
		Direction:    f.Direction,
		ScheduledUTC: f.ScheduledUTC,
		Status:       f.Status,
	}
}

type FlightOptions struct {
	// 看板缓存，nil 不缓存
	Board    cache.Store
	BoardTTL time.Duration
	Now      func() time.Time
}

type FlightService struct {
	flights domain.FlightRepository
	opts    FlightOptions
	log     *zap.Logger
	metrics *metrics.Metrics

	delayMu sync.Mutex // 延误的 Get+Update 不能交错
}

func NewFlightService(flights domain.FlightRepository, opts FlightOptions, l *zap.Logger, m *metrics.Metrics) *FlightService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BoardTTL <= 0 {
		opts.BoardTTL = 30 * time.Second
	}
	if l == nil {
		l = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &FlightService{flights: flights, opts: opts, log: l.Named("flight_service"), metrics: m}
}

func (s *FlightService) RegisterArrival(ctx context.Context, req RegisterArrivalRequest) (RegisterFlightResponse, error) {
	return s.register(ctx, domain.FlightParams{
		AirlineCode:  req.AirlineCode,
		FlightCode:   req.FlightCode,
		PlaneID:      req.PlaneID,
		City:         req.DepartureCity,
		Direction:    domain.DirectionArrival,
		ScheduledUTC: req.ScheduledArrivalUTC,
	}, "departureCity")
}

func (s *FlightService) RegisterDeparture(ctx context.Context, req RegisterDepartureRequest) (RegisterFlightResponse, error) {
	return s.register(ctx, domain.FlightParams{
		AirlineCode:  req.AirlineCode,
		FlightCode:   req.FlightCode,
		PlaneID:      req.PlaneID,
		City:         req.ArrivalCity,
		Direction:    domain.DirectionDeparture,
		ScheduledUTC: req.ScheduledDepartureUTC,
	}, "arrivalCity")
}

func (s *FlightService) register(ctx context.Context, p domain.FlightParams, cityField string) (RegisterFlightResponse, error) {
	dir := string(p.Direction)
	p, err := normalizeFlight(p, cityField)
	if err != nil {
		s.metrics.FlightsRegistered.WithLabelValues(dir, metrics.OutcomeInvalid).Inc()
		return RegisterFlightResponse{}, err
	}

	f := domain.NewFlight(p, s.opts.Now())
	// plane id 在所有方向上唯一
	if err := s.flights.AddUnique(ctx, f); err != nil {
		if domain.IsConflict(err) {
			s.metrics.FlightsRegistered.WithLabelValues(dir, metrics.OutcomeConflict).Inc()
			s.log.Info("flight rejected: plane id taken", zap.String("plane_id", f.PlaneID), zap.String("direction", dir))
			return RegisterFlightResponse{}, err
		}
		s.metrics.FlightsRegistered.WithLabelValues(dir, metrics.OutcomeError).Inc()
		return RegisterFlightResponse{}, fmt.Errorf("store flight: %w", err)
	}
	s.invalidateBoard(ctx)

	s.metrics.FlightsRegistered.WithLabelValues(dir, metrics.OutcomeOK).Inc()
	s.log.Info("flight registered",
		zap.String("flight_id", f.ID),
		zap.String("flight_code", f.FlightCode),
		zap.String("plane_id", f.PlaneID),
		zap.String("direction", dir),
		zap.Time("scheduled_utc", f.ScheduledUTC),
	)
	return RegisterFlightResponse{FlightID: f.ID}, nil
}

// normalizeFlight 航司、城市忽略大小写规范化；航班号和 plane id 只 trim（规则本身要求大写）
func normalizeFlight(p domain.FlightParams, cityField string) (domain.FlightParams, error) {
	airline, ok := domain.CanonicalAirline(p.AirlineCode)
	if !ok {
		return p, domain.NewValidationError("airlineCode", "must be one of "+strings.Join(domain.AirlineCodes(), ", "))
	}
	p.AirlineCode = airline

	city, ok := domain.CanonicalCity(p.City)
	if !ok {
		return p, domain.NewValidationError(cityField, "must be one of "+strings.Join(domain.Cities(), ", "))
	}
	p.City = city

	p.FlightCode = strings.TrimSpace(p.FlightCode)
	if !validation.IsValidFlightCode(p.FlightCode) {
		return p, domain.NewValidationError("flightCode", "must be 2-3 letters followed by 3 digits")
	}
	p.PlaneID = strings.TrimSpace(p.PlaneID)
	if !validation.IsValidPlaneID(p.PlaneID) {
		return p, domain.NewValidationError("planeId", "must be 3 letters, digits, then A or D")
	}
	if p.ScheduledUTC.IsZero() {
		return p, domain.NewValidationError("scheduledUtc", "is required")
	}
	return p, nil
}

// ListFlights 全部航班，按计划时间升序
func (s *FlightService) ListFlights(ctx context.Context) ([]FlightView, error) {
	if s.opts.Board == nil {
		return s.loadBoard(ctx)
	}
	// 先读代数再回源：回源途中发生的失效只会弄脏旧代的 key
	gen, err := s.opts.Board.Version(ctx, boardGenKey)
	if err != nil {
		s.log.Warn("board cache unavailable, reading store", zap.Error(err))
		return s.loadBoard(ctx)
	}
	key := fmt.Sprintf("%s:%d", boardKey, gen)
	return cache.GetOrLoadJSON(ctx, s.opts.Board, key, s.opts.BoardTTL, s.loadBoard)
}

func (s *FlightService) ListFlightsByDirection(ctx context.Context, dir domain.Direction) ([]FlightView, error) {
	dir, ok := domain.ParseDirection(string(dir))
	if !ok {
		return nil, domain.NewValidationError("direction", "must be arrival or departure")
	}
	all, err := s.ListFlights(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]FlightView, 0, len(all))
	for _, v := range all {
		if v.Direction == dir {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *FlightService) loadBoard(ctx context.Context) ([]FlightView, error) {
	all, err := s.flights.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	out := make([]FlightView, 0, len(all))
	for _, f := range all {
		out = append(out, viewOf(f))
	}
	slices.SortFunc(out, func(a, b FlightView) int {
		if c := a.ScheduledUTC.Compare(b.ScheduledUTC); c != 0 {
			return c
		}
		if c := strings.Compare(a.FlightCode, b.FlightCode); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DelayFlight 推迟 delta 并标记为 delayed
// TODO: 配对规则定下来后，到达延误要同步推迟复用同一架飞机的出发航班
func (s *FlightService) DelayFlight(ctx context.Context, flightID string, delta time.Duration) (FlightView, error) {
	if delta <= 0 {
		return FlightView{}, domain.NewValidationError("delay", "must be positive")
	}

	s.delayMu.Lock()
	defer s.delayMu.Unlock()

	f, err := s.flights.Get(ctx, flightID)
	if err != nil {
		return FlightView{}, err
	}
	f.DelayBy(delta, s.opts.Now())
	if err := s.flights.Update(ctx, f); err != nil {
		return FlightView{}, fmt.Errorf("update flight: %w", err)
	}
	s.invalidateBoard(ctx)

	s.metrics.FlightDelays.Inc()
	s.log.Info("flight delayed",
		zap.String("flight_id", f.ID),
		zap.Duration("delta", delta),
		zap.Time("scheduled_utc", f.ScheduledUTC),
	)
	return viewOf(f), nil
}

// DelayFlightByPlane 先按 plane id 找到航班
func (s *FlightService) DelayFlightByPlane(ctx context.Context, planeID string, delta time.Duration) (FlightView, error) {
	planeID = strings.TrimSpace(planeID)
	all, err := s.flights.List(ctx)
	if err != nil {
		return FlightView{}, fmt.Errorf("list flights: %w", err)
	}
	for _, f := range all {
		if f.PlaneID == planeID {
			return s.DelayFlight(ctx, f.ID, delta)
		}
	}
	return FlightView{}, domain.NewNotFoundError("flight", planeID)
}

func (s *FlightService) invalidateBoard(ctx context.Context) {
	if s.opts.Board == nil {
		return
	}
	// 数据已落库，请求被取消也要让旧看板作废
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if _, err := s.opts.Board.Bump(bctx, boardGenKey); err != nil {
		s.log.Warn("board cache invalidation failed", zap.Error(err))
	}
}
