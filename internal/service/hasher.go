package service

import "airport-ops/pkg/utils"

// PasswordHasher 密码哈希/校验
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher Cost <= 0 时用 bcrypt.DefaultCost
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	return utils.HashPassword(password, h.Cost)
}

func (h BcryptHasher) Compare(hash, password string) bool {
	return utils.CheckPassword(password, hash)
}
