package domain

import "context"

// Repository 用户/航班的键值仓储
//   - Get：id 不存在返回 *NotFoundError
//   - Add / Update：按 id 覆盖写（后写为准）
//   - Remove：id 不存在时什么也不做
//   - List：无序快照，调用方自己排序
//   - AddUnique：唯一键（用户邮箱 / plane id）已存在返回 *ConflictError，检查和插入是原子的
type Repository[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Add(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]T, error)
	AddUnique(ctx context.Context, e T) error
}

type (
	UserRepository   = Repository[User]
	FlightRepository = Repository[Flight]
)
