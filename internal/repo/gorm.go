package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"airport-ops/internal/domain"
	"airport-ops/internal/feature/flight"
	"airport-ops/internal/feature/user"
)

// Gorm 基于 SQL 表的通用仓储：T 领域实体，M 对应 GORM 模型。
// 唯一性靠表上的唯一索引，AddUnique 把重复键错误转成 *domain.ConflictError
type Gorm[T any, M any] struct {
	db       *gorm.DB
	resource string
	keyField string
	keyOf    func(T) string
	toModel  func(T) *M
	toDomain func(*M) T
}

func NewUserRepo(db *gorm.DB) *Gorm[domain.User, user.UserModel] {
	return &Gorm[domain.User, user.UserModel]{
		db:       db,
		resource: "user",
		keyField: "email",
		keyOf:    domain.UserEmailKey,
		toModel:  user.FromDomain,
		toDomain: (*user.UserModel).ToDomain,
	}
}

func NewFlightRepo(db *gorm.DB) *Gorm[domain.Flight, flight.FlightModel] {
	return &Gorm[domain.Flight, flight.FlightModel]{
		db:       db,
		resource: "flight",
		keyField: "plane id",
		keyOf:    domain.FlightPlaneKey,
		toModel:  flight.FromDomain,
		toDomain: (*flight.FlightModel).ToDomain,
	}
}

// Migrate 建表/改表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.UserModel{}, &flight.FlightModel{})
}

func (r *Gorm[T, M]) Get(ctx context.Context, id string) (T, error) {
	var m M
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var zero T
		return zero, domain.NewNotFoundError(r.resource, id)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return r.toDomain(&m), nil
}

// Add 按主键 upsert
func (r *Gorm[T, M]) Add(ctx context.Context, e T) error {
	return r.db.WithContext(ctx).Save(r.toModel(e)).Error
}

func (r *Gorm[T, M]) Update(ctx context.Context, e T) error { return r.Add(ctx, e) }

func (r *Gorm[T, M]) Remove(ctx context.Context, id string) error {
	var m M
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&m).Error
}

func (r *Gorm[T, M]) List(ctx context.Context) ([]T, error) {
	var ms []M
	if err := r.db.WithContext(ctx).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ms))
	for i := range ms {
		out = append(out, r.toDomain(&ms[i]))
	}
	return out, nil
}

func (r *Gorm[T, M]) AddUnique(ctx context.Context, e T) error {
	err := r.db.WithContext(ctx).Create(r.toModel(e)).Error
	if err != nil && isDupKey(err) {
		return domain.NewConflictError(r.resource, r.keyField, r.keyOf(e))
	}
	return err
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动未开启 TranslateError 时只能看错误文本
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

var (
	_ domain.UserRepository   = (*Gorm[domain.User, user.UserModel])(nil)
	_ domain.FlightRepository = (*Gorm[domain.Flight, flight.FlightModel])(nil)
)
