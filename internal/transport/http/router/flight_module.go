package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"airport-ops/internal/domain"
	"airport-ops/internal/service"
	"airport-ops/internal/transport/http/ez"
	mdw "airport-ops/internal/transport/http/middleware"
)

// 控制台时间格式 HH:mm dd/MM/yyyy（24 小时制，机场本地时间）
const consoleLayout = "15:04 02/01/2006"

type scheduleIn struct {
	ScheduledUTC   *time.Time `json:"scheduledUtc"   binding:"required_without=ScheduledLocal"`
	ScheduledLocal string     `json:"scheduledLocal"`
}

type arrivalIn struct {
	AirlineCode   string `json:"airlineCode"   binding:"required"`
	FlightCode    string `json:"flightCode"    binding:"required,flight_code"`
	DepartureCity string `json:"departureCity" binding:"required"`
	PlaneID       string `json:"planeId"       binding:"required,plane_id"`
	scheduleIn
}

type departureIn struct {
	AirlineCode string `json:"airlineCode" binding:"required"`
	FlightCode  string `json:"flightCode"  binding:"required,flight_code"`
	ArrivalCity string `json:"arrivalCity" binding:"required"`
	PlaneID     string `json:"planeId"     binding:"required,plane_id"`
	scheduleIn
}

type delayIn struct {
	Minutes int `json:"minutes" binding:"required,min=1,max=1440"`
}

type boardQ struct {
	Direction string `form:"direction" binding:"omitempty,oneof=arrival departure"`
}

type flightModule struct{ d Deps }

func (*flightModule) Priority() int { return 20 }

func (m *flightModule) location() *time.Location {
	if m.d.Location == nil {
		return time.UTC
	}
	return m.d.Location
}

// scheduled 统一转成 UTC，服务层不解析时间文本
func (m *flightModule) scheduled(in scheduleIn) (time.Time, error) {
	if in.ScheduledUTC != nil {
		return in.ScheduledUTC.UTC(), nil
	}
	t, err := time.ParseInLocation(consoleLayout, strings.TrimSpace(in.ScheduledLocal), m.location())
	if err != nil {
		return time.Time{}, ez.BadRequest("invalid scheduledLocal: want HH:mm dd/MM/yyyy")
	}
	return t.UTC(), nil
}

func (m *flightModule) board(c *gin.Context, in *boardQ) ([]service.FlightView, error) {
	if in.Direction == "" {
		return m.d.Flights.ListFlights(c.Request.Context())
	}
	return m.d.Flights.ListFlightsByDirection(c.Request.Context(), domain.Direction(in.Direction))
}

func (m *flightModule) MountAPI(api *gin.RouterGroup) {
	ez.RegisterAction(ez.New(api, m.d.Log), ez.Action[boardQ, []service.FlightView]{
		Method:  http.MethodGet,
		Path:    "/flights",
		Binder:  ez.BindQuery,
		Handler: m.board,
	})
}

func (m *flightModule) MountAdmin(admin *gin.RouterGroup) {
	manager := string(domain.RoleManager)
	e := ez.New(admin, m.d.Log).Group("", mdw.AuthJWT(m.d.JWT, manager))

	ez.RegisterAction(e, ez.Action[boardQ, []service.FlightView]{
		Method:  http.MethodGet,
		Path:    "/flights",
		Binder:  ez.BindQuery,
		Auth:    true,
		Roles:   []string{manager},
		Handler: m.board,
	})
	ez.RegisterAction(e, ez.Action[arrivalIn, service.RegisterFlightResponse]{
		Method: http.MethodPost,
		Path:   "/flights/arrivals",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  []string{manager},
		Handler: func(c *gin.Context, in *arrivalIn) (service.RegisterFlightResponse, error) {
			at, err := m.scheduled(in.scheduleIn)
			if err != nil {
				return service.RegisterFlightResponse{}, err
			}
			return m.d.Flights.RegisterArrival(c.Request.Context(), service.RegisterArrivalRequest{
				AirlineCode:         in.AirlineCode,
				FlightCode:          in.FlightCode,
				DepartureCity:       in.DepartureCity,
				PlaneID:             in.PlaneID,
				ScheduledArrivalUTC: at,
			})
		},
	})
	ez.RegisterAction(e, ez.Action[departureIn, service.RegisterFlightResponse]{
		Method: http.MethodPost,
		Path:   "/flights/departures",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  []string{manager},
		Handler: func(c *gin.Context, in *departureIn) (service.RegisterFlightResponse, error) {
			at, err := m.scheduled(in.scheduleIn)
			if err != nil {
				return service.RegisterFlightResponse{}, err
			}
			return m.d.Flights.RegisterDeparture(c.Request.Context(), service.RegisterDepartureRequest{
				AirlineCode:           in.AirlineCode,
				FlightCode:            in.FlightCode,
				ArrivalCity:           in.ArrivalCity,
				PlaneID:               in.PlaneID,
				ScheduledDepartureUTC: at,
			})
		},
	})
	ez.RegisterAction(e, ez.Action[delayIn, service.FlightView]{
		Method: http.MethodPost,
		Path:   "/flights/:id/delay",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  []string{manager},
		Handler: func(c *gin.Context, in *delayIn) (service.FlightView, error) {
			return m.d.Flights.DelayFlight(c.Request.Context(), c.Param("id"), time.Duration(in.Minutes)*time.Minute)
		},
	})
	ez.RegisterAction(e, ez.Action[delayIn, service.FlightView]{
		Method: http.MethodPost,
		Path:   "/planes/:planeId/delay",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  []string{manager},
		Handler: func(c *gin.Context, in *delayIn) (service.FlightView, error) {
			return m.d.Flights.DelayFlightByPlane(c.Request.Context(), c.Param("planeId"), time.Duration(in.Minutes)*time.Minute)
		},
	})
}
