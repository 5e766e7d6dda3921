package user

import (
	"time"

	"airport-ops/internal/domain"
)

// UserModel 三种角色共用一张表，不属于本角色的列为 NULL
type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Role         string `gorm:"size:16;not null;index"`
	Name         string `gorm:"size:64;not null"`
	Age          int    `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;size:191;not null"`
	Mobile       string `gorm:"size:10;not null"`
	PasswordHash string `gorm:"size:100;not null"`

	FrequentFlyerNumber *int
	Points              *int
	StaffID             *string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

func FromDomain(u domain.User) *UserModel {
	m := &UserModel{
		ID:           u.ID,
		Role:         string(u.Role),
		Name:         u.Name,
		Age:          u.Age,
		Email:        u.Email,
		Mobile:       u.Mobile,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if ff := u.FrequentFlyer; ff != nil {
		n, p := ff.Number, ff.Points
		m.FrequentFlyerNumber, m.Points = &n, &p
	}
	if mg := u.Manager; mg != nil {
		s := mg.StaffID
		m.StaffID = &s
	}
	return m
}

func (m *UserModel) ToDomain() domain.User {
	u := domain.User{
		ID:           m.ID,
		Role:         domain.Role(m.Role),
		Name:         m.Name,
		Age:          m.Age,
		Email:        m.Email,
		Mobile:       m.Mobile,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	switch u.Role {
	case domain.RoleFrequentFlyer:
		ff := &domain.FrequentFlyerProfile{}
		if m.FrequentFlyerNumber != nil {
			ff.Number = *m.FrequentFlyerNumber
		}
		if m.Points != nil {
			ff.Points = *m.Points
		}
		u.FrequentFlyer = ff
	case domain.RoleManager:
		mg := &domain.ManagerProfile{}
		if m.StaffID != nil {
			mg.StaffID = *m.StaffID
		}
		u.Manager = mg
	}
	return u
}
