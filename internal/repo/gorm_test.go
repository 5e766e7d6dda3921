package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDupKey(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{gorm.ErrDuplicatedKey, true},
		{fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{errors.New("Error 1062 (23000): Duplicate entry 'a@b.com' for key 'users.idx_users_email'"), true},
		{errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`), true},
		{errors.New("UNIQUE constraint failed: users.email"), true},
		{errors.New("connection refused"), false},
		{gorm.ErrRecordNotFound, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, isDupKey(c.err), c.err.Error())
	}
}
