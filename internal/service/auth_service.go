// Package service holds the application's business logic.
package service

import (
	"context"
	"strings"

	"socialnova/internal/auth"
	"socialnova/internal/models"
	"socialnova/internal/notifications"
	"socialnova/internal/observability"
	"socialnova/internal/repository"
	"socialnova/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const tokenType = "Bearer"

// AuthService handles sign up, sign in and token lifecycle.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	events *notifications.AuthEvents
}

type SignUpInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type SignInInput struct {
	// Email may also hold a username.
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, events *notifications.AuthEvents) *AuthService {
	return &AuthService{users: users, tokens: tokens, events: events}
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.Session, error) {
	span, ctx := observability.StartService(ctx, "AuthService", "SignUp")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = in.Username
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		FullName: fullName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}
	return s.startSession(ctx, user, notifications.SignedIn)
}

// SignIn accepts an email or username. Unknown accounts and bad passwords
// produce the same error.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*models.Session, error) {
	span, ctx := observability.StartService(ctx, "AuthService", "SignIn")
	defer span.End()

	ident := strings.TrimSpace(in.Email)
	if ident == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	var user *models.User
	var err error
	if strings.Contains(ident, "@") {
		user, err = s.users.GetByEmail(ctx, ident)
	} else {
		user, err = s.users.GetByUsername(ctx, ident)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.startSession(ctx, user, notifications.SignedIn)
}

// SignOut revokes the presented token.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.NewUnauthorizedError("Not signed in")
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	uid, _ := claims.UserID()
	s.publish(ctx, notifications.AuthEvent{Type: notifications.SignedOut, UserID: uid})
	return nil
}

// Refresh trades a valid token for a new one and revokes the old.
func (s *AuthService) Refresh(ctx context.Context, claims *auth.Claims) (*models.Session, error) {
	if claims == nil {
		return nil, models.NewUnauthorizedError("Not signed in")
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.startSession(ctx, user, notifications.TokenRefreshed)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Session describes the caller's existing token without issuing a new one.
func (s *AuthService) Session(ctx context.Context, claims *auth.Claims, raw string) (*models.Session, error) {
	if claims == nil {
		return nil, models.NewUnauthorizedError("Not signed in")
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		AccessToken: raw,
		TokenType:   tokenType,
		ExpiresAt:   claims.ExpiresAtTime(),
		User:        models.NewAccount(user),
	}, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, event notifications.AuthEventType) (*models.Session, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	session := &models.Session{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   claims.ExpiresAtTime(),
		User:        models.NewAccount(user),
	}
	s.publish(ctx, notifications.AuthEvent{Type: event, UserID: user.ID, User: user, Session: session})
	return session, nil
}

func (s *AuthService) publish(ctx context.Context, ev notifications.AuthEvent) {
	if s.events != nil {
		s.events.Publish(ctx, ev)
	}
}
