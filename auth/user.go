// Package auth 提供账号注册与登录：密码以 bcrypt 哈希保存，登录成功签发 HS256 JWT。
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/rushteam/cetmatch/core"
)

// User 是注册用户。PasswordHash 永远不会序列化到响应中。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore 是用户持久化接口。
type UserStore interface {
	// CreateUser 写入新用户，邮箱已存在时返回 ErrEmailTaken
	CreateUser(ctx context.Context, u *User) error
	// UserByEmail 按邮箱查找，不存在时返回 ErrUserNotFound
	UserByEmail(ctx context.Context, email string) (*User, error)
	Close() error
}

var (
	ErrEmailTaken      = core.NewDomainError(core.ModuleAuth, core.ErrorCodeConflict, "Email already in use")
	ErrUserNotFound    = core.NewDomainError(core.ModuleAuth, core.ErrorCodeNotFound, "auth: user not found")
	ErrBadCredentials  = core.NewDomainError(core.ModuleAuth, core.ErrorCodeUnauthorized, "Invalid credentials")
	ErrInvalidToken    = core.NewDomainError(core.ModuleAuth, core.ErrorCodeUnauthorized, "Invalid token")
	errMissingSignup   = core.NewDomainError(core.ModuleAuth, core.ErrorCodeInvalidInput, "Name, email and password are required")
	errMissingSignin   = core.NewDomainError(core.ModuleAuth, core.ErrorCodeInvalidInput, "Email and password are required")
	errPasswordTooLong = core.NewDomainError(core.ModuleAuth, core.ErrorCodeInvalidInput, "password must be at most 72 bytes")
)

// NormalizeEmail 去掉首尾空白并转小写，作为唯一键。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
