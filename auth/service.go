package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rushteam/cetmatch/core"
)

// 默认值
const (
	DefaultTokenTTL   = 7 * 24 * time.Hour
	DefaultBcryptCost = 10
	// maxPasswordBytes 是 bcrypt 能处理的最大密码长度
	maxPasswordBytes = 72
)

// Claims 是签发给用户的 JWT 载荷。
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session 是注册/登录成功后的返回。
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Service 实现注册、登录与 token 校验。构建后只读，可并发使用。
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	logger *zap.Logger
}

// Option 配置 Service
type Option func(*Service)

// WithTokenTTL 设置 token 有效期
func WithTokenTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithBcryptCost 设置 bcrypt cost，超出 bcrypt 允许范围时保持默认
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService 创建服务。secret 为空时返回 CONFIGURATION 错误。
func NewService(users UserStore, secret string, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, core.NewConfigurationError(core.ModuleAuth, "auth: user store not set", nil)
	}
	if secret == "" {
		return nil, core.NewConfigurationError(core.ModuleAuth, "auth: jwt secret not set", nil)
	}
	s := &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		cost:   DefaultBcryptCost,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Signup 注册新用户并签发 token。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, errMissingSignup
	}
	if len(password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}

	switch _, err := s.users.UserByEmail(ctx, email); {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	// 并发注册同一邮箱时由唯一约束兜底
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("user_id", u.ID))
	return s.session(u)
}

// Signin 校验邮箱与密码。邮箱不存在与密码错误返回同一个错误。
func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errMissingSignin
	}
	u, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return s.session(u)
}

// Verify 校验 token 签名与有效期，返回载荷。
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleAuth, core.ErrorCodeUnauthorized, ErrInvalidToken.Message, err)
	}
	return claims, nil
}

// Close 关闭用户存储
func (s *Service) Close() error { return s.users.Close() }

func (s *Service) session(u *User) (*Session, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token: token,
		User:  SessionUser{ID: u.ID, Name: u.Name, Email: u.Email},
	}, nil
}
