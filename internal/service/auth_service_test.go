package service

import (
	"context"
	"testing"

	"socialnova/internal/models"
	"socialnova/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_SignUpValidation(t *testing.T) {
	d := newDeps(t)
	svc := NewAuthService(d.users, d.tokens, d.events)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SignUpInput
		code string
	}{
		{"bad username", SignUpInput{Username: "a!", Email: "a@example.com", Password: "password1"}, models.CodeValidation},
		{"bad email", SignUpInput{Username: "alice", Email: "nope", Password: "password1"}, models.CodeValidation},
		{"weak password", SignUpInput{Username: "alice", Email: "a@example.com", Password: "short"}, models.CodeValidation},
		{"no digit", SignUpInput{Username: "alice", Email: "a@example.com", Password: "passwordonly"}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.in)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAuthService_SignUpSignInFlow(t *testing.T) {
	d := newDeps(t)
	svc := NewAuthService(d.users, d.tokens, d.events)
	ctx := context.Background()

	var events []notifications.AuthEventType
	session, err := svc.SignUp(ctx, SignUpInput{Username: "alice", Email: "Alice@Example.com", Password: "password1"})
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.Equal(t, "alice", session.User.FullName)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.NotEqual(t, "password1", session.User.Password)

	d.events.Subscribe(session.User.ID, func(ev notifications.AuthEvent) { events = append(events, ev.Type) })

	_, err = svc.SignUp(ctx, SignUpInput{Username: "alice2", Email: "alice@example.com", Password: "password1"})
	assert.True(t, models.IsCode(err, models.CodeConflict))
	_, err = svc.SignUp(ctx, SignUpInput{Username: "ALICE", Email: "other@example.com", Password: "password1"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	_, err = svc.SignIn(ctx, SignInInput{Email: "alice@example.com", Password: "wrong-pass1"})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
	_, err = svc.SignIn(ctx, SignInInput{Email: "ghost@example.com", Password: "password1"})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))

	byName, err := svc.SignIn(ctx, SignInInput{Email: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, byName.User.ID)

	claims, err := d.tokens.Verify(ctx, byName.AccessToken)
	require.NoError(t, err)

	current, err := svc.Session(ctx, claims, byName.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, byName.AccessToken, current.AccessToken)
	assert.Equal(t, "alice", current.User.Username)

	refreshed, err := svc.Refresh(ctx, claims)
	require.NoError(t, err)
	assert.NotEqual(t, byName.AccessToken, refreshed.AccessToken)
	_, err = d.tokens.Verify(ctx, byName.AccessToken)
	assert.Error(t, err, "refreshed token is revoked")

	newClaims, err := d.tokens.Verify(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, newClaims))
	_, err = d.tokens.Verify(ctx, refreshed.AccessToken)
	assert.Error(t, err)

	assert.Equal(t, []notifications.AuthEventType{
		notifications.SignedIn, notifications.TokenRefreshed, notifications.SignedOut,
	}, events)
}

func TestAuthService_SignInRequiresFields(t *testing.T) {
	d := newDeps(t)
	svc := NewAuthService(d.users, d.tokens, nil)
	_, err := svc.SignIn(context.Background(), SignInInput{Email: "", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
	assert.True(t, models.IsCode(svc.SignOut(context.Background(), nil), models.CodeUnauthorized))
}
