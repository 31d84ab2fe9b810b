package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rushteam/cetmatch/core"
)

func openStore(t *testing.T) (*SQLiteUserStore, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "users.db")
	s, err := OpenSQLiteUserStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dsn
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	users, _ := openStore(t)
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	svc, err := NewService(users, "test-secret", opts...)
	require.NoError(t, err)
	return svc
}

func TestSQLiteUserStore(t *testing.T) {
	s, dsn := openStore(t)
	ctx := context.Background()

	_, err := s.UserByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{ID: "u1", Name: "Asha", Email: "a@example.com", PasswordHash: "h", CreatedAt: created}
	require.NoError(t, s.CreateUser(ctx, u))

	err = s.CreateUser(ctx, &User{ID: "u2", Name: "Other", Email: "a@example.com", PasswordHash: "h", CreatedAt: created})
	assert.True(t, core.IsConflict(err), "got %v", err)

	// 重新打开后数据仍在，建表语句可重复执行
	require.NoError(t, s.Close())
	s2, err := OpenSQLiteUserStore(ctx, dsn)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestNewService_Errors(t *testing.T) {
	users, _ := openStore(t)
	_, err := NewService(users, "")
	assert.True(t, core.IsConfigurationError(err))
	_, err = NewService(nil, "secret")
	assert.True(t, core.IsConfigurationError(err))
}

func TestSignupAndSignin(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	sess, err := svc.Signup(ctx, " Asha ", " Asha@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Asha", sess.User.Name)
	assert.Equal(t, "asha@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.User.ID)

	claims, err := svc.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, now.Add(DefaultTokenTTL), claims.ExpiresAt.Time.UTC())

	in, err := svc.Signin(ctx, "ASHA@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, sess.User, in.User)

	// 密码以 bcrypt 哈希保存
	u, err := svc.users.UserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
}

func TestSignup_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Asha", "asha@example.com", "pw")
	require.NoError(t, err)

	tests := []struct {
		name             string
		uname, email, pw string
		check            func(error) bool
	}{
		{"duplicate email", "Other", "ASHA@example.com", "pw2", core.IsConflict},
		{"missing name", " ", "b@example.com", "pw", core.IsInvalidInput},
		{"missing email", "B", "", "pw", core.IsInvalidInput},
		{"missing password", "B", "b@example.com", "", core.IsInvalidInput},
		{"password too long", "B", "b@example.com", strings.Repeat("x", 73), core.IsInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.uname, tt.email, tt.pw)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestSignin_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, "Asha", "asha@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Signin(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Signin(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Signin(ctx, "asha@example.com", "")
	assert.True(t, core.IsInvalidInput(err))
}

func TestVerify_Rejects(t *testing.T) {
	issued := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	svc := newService(t, WithClock(func() time.Time { return clock }), WithTokenTTL(time.Hour))
	sess, err := svc.Signup(context.Background(), "Asha", "asha@example.com", "pw")
	require.NoError(t, err)

	clock = issued.Add(2 * time.Hour)
	_, err = svc.Verify(sess.Token)
	assert.True(t, core.IsUnauthorized(err), "expired: %v", err)
	clock = issued

	other, err := NewService(svc.users, "another-secret", WithClock(func() time.Time { return issued }))
	require.NoError(t, err)
	_, err = other.Verify(sess.Token)
	assert.True(t, core.IsUnauthorized(err), "wrong secret: %v", err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.True(t, core.IsUnauthorized(err), "alg none: %v", err)

	_, err = svc.Verify("not-a-token")
	assert.True(t, core.IsUnauthorized(err))
}
