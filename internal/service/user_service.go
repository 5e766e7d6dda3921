package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"airport-ops/internal/core/metrics"
	"airport-ops/internal/domain"
	"airport-ops/internal/validation"
)

var passwordRule = fmt.Sprintf("needs %d to %d bytes with upper case, lower case and a digit",
	validation.MinPasswordLen, validation.MaxPasswordBytes)

type RegisterUserRequest struct {
	Name     string
	Age      int
	Email    string
	Mobile   string
	Password string
}

type RegisterFrequentFlyerRequest struct {
	RegisterUserRequest
	FrequentFlyerNumber int
	Points              int
}

type RegisterManagerRequest struct {
	RegisterUserRequest
	StaffID string
}

type RegisterUserResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	UserID string      `json:"userId"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

type UserOptions struct {
	// 员工号必须是 1000-9000 的数字
	NumericStaffID bool
	Now            func() time.Time
}

// UserService 注册、登录、改密码
type UserService struct {
	users   domain.UserRepository
	hasher  PasswordHasher
	opts    UserOptions
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewUserService(users domain.UserRepository, hasher PasswordHasher, opts UserOptions, l *zap.Logger, m *metrics.Metrics) *UserService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if l == nil {
		l = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &UserService{users: users, hasher: hasher, opts: opts, log: l.Named("user_service"), metrics: m}
}

func (s *UserService) RegisterTraveller(ctx context.Context, req RegisterUserRequest) (RegisterUserResponse, error) {
	return s.register(ctx, domain.RoleTraveller, req, nil, func(p domain.UserParams, now time.Time) domain.User {
		return domain.NewTraveller(p, now)
	})
}

func (s *UserService) RegisterFrequentFlyer(ctx context.Context, req RegisterFrequentFlyerRequest) (RegisterUserResponse, error) {
	check := func() error {
		if !validation.IsValidFrequentFlyerNumber(req.FrequentFlyerNumber) {
			return domain.NewValidationError("frequentFlyerNumber",
				fmt.Sprintf("must be between %d and %d", validation.MinFrequentFlyerNumber, validation.MaxFrequentFlyerNumber))
		}
		if !validation.IsValidPoints(req.Points) {
			return domain.NewValidationError("points",
				fmt.Sprintf("must be between %d and %d", validation.MinPoints, validation.MaxPoints))
		}
		return nil
	}
	return s.register(ctx, domain.RoleFrequentFlyer, req.RegisterUserRequest, check, func(p domain.UserParams, now time.Time) domain.User {
		return domain.NewFrequentFlyer(p, req.FrequentFlyerNumber, req.Points, now)
	})
}

func (s *UserService) RegisterManager(ctx context.Context, req RegisterManagerRequest) (RegisterUserResponse, error) {
	staffID := strings.TrimSpace(req.StaffID)
	check := func() error {
		if !validation.IsValidStaffID(staffID) {
			return domain.NewValidationError("staffId", "is required")
		}
		if s.opts.NumericStaffID && !validation.IsValidNumericStaffID(staffID) {
			return domain.NewValidationError("staffId",
				fmt.Sprintf("must be a number between %d and %d", validation.MinNumericStaffID, validation.MaxNumericStaffID))
		}
		return nil
	}
	return s.register(ctx, domain.RoleManager, req.RegisterUserRequest, check, func(p domain.UserParams, now time.Time) domain.User {
		return domain.NewManager(p, staffID, now)
	})
}

// register 校验 -> 哈希 -> 按邮箱原子插入，失败不落任何数据
func (s *UserService) register(
	ctx context.Context,
	role domain.Role,
	req RegisterUserRequest,
	roleCheck func() error,
	build func(domain.UserParams, time.Time) domain.User,
) (RegisterUserResponse, error) {
	p, err := s.validateCommon(req)
	if err == nil && roleCheck != nil {
		err = roleCheck()
	}
	if err != nil {
		s.metrics.Registrations.WithLabelValues(string(role), metrics.OutcomeInvalid).Inc()
		return RegisterUserResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.Registrations.WithLabelValues(string(role), metrics.OutcomeError).Inc()
		return RegisterUserResponse{}, fmt.Errorf("hash password: %w", err)
	}
	p.PasswordHash = hash

	u := build(p, s.opts.Now())
	if err := s.users.AddUnique(ctx, u); err != nil {
		if domain.IsConflict(err) {
			s.metrics.Registrations.WithLabelValues(string(role), metrics.OutcomeConflict).Inc()
			s.log.Info("registration rejected: email taken", zap.String("role", string(role)), zap.String("email", u.Email))
			return RegisterUserResponse{}, err
		}
		s.metrics.Registrations.WithLabelValues(string(role), metrics.OutcomeError).Inc()
		return RegisterUserResponse{}, fmt.Errorf("store user: %w", err)
	}

	s.metrics.Registrations.WithLabelValues(string(role), metrics.OutcomeOK).Inc()
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return RegisterUserResponse{UserID: u.ID, Email: u.Email}, nil
}

func (s *UserService) validateCommon(req RegisterUserRequest) (domain.UserParams, error) {
	name := strings.TrimSpace(req.Name)
	mobile := strings.TrimSpace(req.Mobile)
	email := validation.NormalizeEmail(req.Email)

	switch {
	case !validation.IsValidName(name):
		return domain.UserParams{}, domain.NewValidationError("name", "letters, spaces, apostrophes and hyphens only")
	case !validation.IsValidAge(req.Age):
		return domain.UserParams{}, domain.NewValidationError("age",
			fmt.Sprintf("must be between %d and %d", validation.MinAge, validation.MaxAge))
	case !validation.IsValidEmail(email):
		return domain.UserParams{}, domain.NewValidationError("email", "must look like name@host")
	case !validation.IsValidMobile(mobile):
		return domain.UserParams{}, domain.NewValidationError("mobile", "must be 10 digits starting with 0")
	case !validation.IsValidPassword(req.Password):
		return domain.UserParams{}, domain.NewValidationError("password", passwordRule)
	}
	return domain.UserParams{Name: name, Age: req.Age, Email: email, Mobile: mobile}, nil
}

// Login 邮箱不存在和密码错误返回同一个错误
func (s *UserService) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	email := validation.NormalizeEmail(req.Email)
	u, found, err := s.findByEmail(ctx, email)
	if err != nil {
		s.metrics.Logins.WithLabelValues(metrics.OutcomeError).Inc()
		return LoginResult{}, err
	}
	if !found || !s.hasher.Compare(u.PasswordHash, req.Password) {
		s.metrics.Logins.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		s.log.Debug("login failed", zap.String("email", email), zap.Bool("known", found))
		return LoginResult{}, &domain.UnauthorizedError{Message: "invalid email or password"}
	}
	s.metrics.Logins.WithLabelValues(metrics.OutcomeOK).Inc()
	return LoginResult{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("list users: %w", err)
	}
	for _, u := range all {
		if validation.NormalizeEmail(u.Email) == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// ChangePassword 先校验旧密码
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.PasswordHash, current) {
		return &domain.UnauthorizedError{Message: "current password is incorrect"}
	}
	if !validation.IsValidPassword(next) {
		return domain.NewValidationError("newPassword", passwordRule)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.ChangePassword(hash, s.opts.Now())
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.log.Info("password changed", zap.String("user_id", u.ID))
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.users.Get(ctx, id)
}

// ListUsers 按注册时间排序
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortFunc(all, func(a, b domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return all, nil
}
