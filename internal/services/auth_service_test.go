package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*authService, *testEnv) {
	t.Helper()
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 0, 0))
	svc := NewAuthService(env.repo.Gradebook(), AuthConfig{
		TeacherSecret: "admin4444",
		SigningKey:    []byte("test-key"),
		TTL:           time.Hour,
	}, env.validator, env.logger).(*authService)
	return svc, env
}

func TestAuthService_TeacherLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Role: RoleTeacher, Secret: "admin4444"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.Session.IsTeacher())

	session, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, session.Role)
	assert.Equal(t, "teacher", session.Actor())

	_, err = svc.Login(ctx, &LoginRequest{Role: RoleTeacher, Secret: "guess"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_StudentLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Role: RoleStudent, StudentID: " 65001 "})
	require.NoError(t, err)

	session, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, session.Role)
	assert.Equal(t, "65001", session.StudentID)
	assert.False(t, session.IsTeacher())

	_, err = svc.Login(ctx, &LoginRequest{Role: RoleStudent, StudentID: "00000"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Role: "principal"})
	assert.True(t, IsValidation(err))
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	svc, env := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Role: RoleTeacher, Secret: "admin4444"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(env.repo.Gradebook(), AuthConfig{SigningKey: []byte("other-key")}, env.validator, env.logger)
	_, err = other.ParseToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
