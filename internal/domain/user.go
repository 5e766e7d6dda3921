package domain

import (
	"time"

	"airport-ops/pkg/utils"
)

type Role string

const (
	RoleTraveller     Role = "traveller"
	RoleFrequentFlyer Role = "frequent_flyer"
	RoleManager       Role = "manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTraveller, RoleFrequentFlyer, RoleManager:
		return true
	}
	return false
}

// FrequentFlyerProfile 常旅客附加信息
type FrequentFlyerProfile struct {
	Number int `json:"number"`
	Points int `json:"points"`
}

// ManagerProfile 航班经理附加信息
type ManagerProfile struct {
	StaffID string `json:"staffId"`
}

// User 按 Role 区分变体，带附加信息的角色恰好设置一个指针
type User struct {
	ID            string                `json:"id"`
	Role          Role                  `json:"role"`
	Name          string                `json:"name"`
	Age           int                   `json:"age"`
	Email         string                `json:"email"` // 已规范化
	Mobile        string                `json:"mobile"`
	PasswordHash  string                `json:"-"`
	FrequentFlyer *FrequentFlyerProfile `json:"frequentFlyer,omitempty"`
	Manager       *ManagerProfile       `json:"manager,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// UserParams 各角色共有字段，Email 需已规范化
type UserParams struct {
	Name         string
	Age          int
	Email        string
	Mobile       string
	PasswordHash string
}

func newUser(role Role, p UserParams, now time.Time) User {
	now = now.UTC()
	return User{
		ID:           utils.NewID(),
		Role:         role,
		Name:         p.Name,
		Age:          p.Age,
		Email:        p.Email,
		Mobile:       p.Mobile,
		PasswordHash: p.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NewTraveller(p UserParams, now time.Time) User {
	return newUser(RoleTraveller, p, now)
}

func NewFrequentFlyer(p UserParams, number, points int, now time.Time) User {
	u := newUser(RoleFrequentFlyer, p, now)
	u.FrequentFlyer = &FrequentFlyerProfile{Number: number, Points: points}
	return u
}

func NewManager(p UserParams, staffID string, now time.Time) User {
	u := newUser(RoleManager, p, now)
	u.Manager = &ManagerProfile{StaffID: staffID}
	return u
}

// ChangePassword 注册后唯一允许的修改
func (u *User) ChangePassword(hash string, now time.Time) {
	u.PasswordHash = hash
	u.UpdatedAt = now.UTC()
}

// Clone 深拷贝附加信息，避免和存储共享指针
func (u User) Clone() User {
	if u.FrequentFlyer != nil {
		ff := *u.FrequentFlyer
		u.FrequentFlyer = &ff
	}
	if u.Manager != nil {
		m := *u.Manager
		u.Manager = &m
	}
	return u
}

func UserID(u User) string { return u.ID }

// UserEmailKey 用户唯一键
func UserEmailKey(u User) string { return u.Email }
