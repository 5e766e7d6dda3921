package domain

import (
	"strings"
	"time"

	"airport-ops/pkg/utils"
)

type Direction string

const (
	DirectionArrival   Direction = "arrival"
	DirectionDeparture Direction = "departure"
)

// ParseDirection 忽略大小写
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionArrival:
		return DirectionArrival, true
	case DirectionDeparture:
		return DirectionDeparture, true
	}
	return "", false
}

type FlightStatus string

const (
	StatusScheduled FlightStatus = "scheduled"
	StatusDelayed   FlightStatus = "delayed"
)

type Flight struct {
	ID           string       `json:"id"`
	AirlineCode  string       `json:"airlineCode"`
	FlightCode   string       `json:"flightCode"`
	PlaneID      string       `json:"planeId"` // 所有方向上唯一
	City         string       `json:"city"`    // 到达航班为出发地，出发航班为目的地
	Direction    Direction    `json:"direction"`
	ScheduledUTC time.Time    `json:"scheduledUtc"`
	Status       FlightStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type FlightParams struct {
	AirlineCode  string
	FlightCode   string
	PlaneID      string
	City         string
	Direction    Direction
	ScheduledUTC time.Time
}

// NewFlight 新建 scheduled 状态的航班
func NewFlight(p FlightParams, now time.Time) Flight {
	now = now.UTC()
	return Flight{
		ID:           utils.NewID(),
		AirlineCode:  p.AirlineCode,
		FlightCode:   p.FlightCode,
		PlaneID:      p.PlaneID,
		City:         p.City,
		Direction:    p.Direction,
		ScheduledUTC: p.ScheduledUTC.UTC(),
		Status:       StatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DelayBy 推迟 d 并标记 delayed
func (f *Flight) DelayBy(d time.Duration, now time.Time) {
	f.ScheduledUTC = f.ScheduledUTC.Add(d)
	f.Status = StatusDelayed
	f.UpdatedAt = now.UTC()
}

func FlightID(f Flight) string { return f.ID }

// FlightPlaneKey 航班唯一键
func FlightPlaneKey(f Flight) string { return f.PlaneID }
