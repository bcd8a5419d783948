package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 服务层错误类别；调用方用 errors.Is 判断
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("invalid input")
)

// ErrFollowSelf 自关注是入参错误，不是 404（语义是 ErrValidation）
var ErrFollowSelf = fmt.Errorf("%w: cannot follow self", ErrValidation)

// translate 把存储层错误折算到类别；其余错误原样上抛（StorageFailure）
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}
