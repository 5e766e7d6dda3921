package flight

import (
	"time"

	"airport-ops/internal/domain"
)

type FlightModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	AirlineCode  string    `gorm:"size:3;not null"`
	FlightCode   string    `gorm:"size:6;not null;index"`
	PlaneID      string    `gorm:"uniqueIndex;size:32;not null"`
	City         string    `gorm:"size:32;not null"`
	Direction    string    `gorm:"size:16;not null"`
	ScheduledUTC time.Time `gorm:"column:scheduled_utc;not null;index"`
	Status       string    `gorm:"size:16;not null;default:scheduled"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FlightModel) TableName() string { return "flights" }

func FromDomain(f domain.Flight) *FlightModel {
	return &FlightModel{
		ID:           f.ID,
		AirlineCode:  f.AirlineCode,
		FlightCode:   f.FlightCode,
		PlaneID:      f.PlaneID,
		City:         f.City,
		Direction:    string(f.Direction),
		ScheduledUTC: f.ScheduledUTC,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func (m *FlightModel) ToDomain() domain.Flight {
	return domain.Flight{
		ID:           m.ID,
		AirlineCode:  m.AirlineCode,
		FlightCode:   m.FlightCode,
		PlaneID:      m.PlaneID,
		City:         m.City,
		Direction:    domain.Direction(m.Direction),
		ScheduledUTC: m.ScheduledUTC.UTC(),
		Status:       domain.FlightStatus(m.Status),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}
