package walks

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// CredentialStore is the lookup surface the authenticator needs: a single
// read of the principal by its login identifier.
type CredentialStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
}

// Profile is the public projection of a principal returned alongside a
// freshly minted token. The password hash never leaves the store layer.
type Profile struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string  `json:"token"`
	TokenType string  `json:"token_type"`
	User      Profile `json:"user"`
}

// Auther orchestrates credential verification and token issuance.
type Auther struct {
	store        CredentialStore
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator backed by the given
// credential store and config.
func NewAuthenticator(store CredentialStore, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service, mostly for tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator.
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the identifier/password pair and mints a session token.
// An unknown identifier and a wrong password are indistinguishable to the
// caller; a disabled account that authenticated correctly is not.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := s.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
				"identifier": identifier,
				"reason":     "identifier_not_found",
			})
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login identifier lookup error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromUser(user), itoa(user.ID), map[string]any{
				"identifier": identifier,
				"reason":     "password_mismatch",
			})
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login password comparison error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify password")
	}

	if !user.IsActive {
		s.logger.Warn("Login blocked for inactive account", "user_id", user.ID)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromUser(user), itoa(user.ID), map[string]any{
			"identifier": identifier,
			"reason":     "account_disabled",
		})
		return nil, ErrAccountDisabled
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromUser(user), itoa(user.ID), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromUser(user), itoa(user.ID), map[string]any{
		"identifier": identifier,
	})

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		User:      NewProfile(user),
	}, nil
}

// NewProfile builds the public projection of a user.
func NewProfile(user *User) Profile {
	if user == nil {
		return Profile{}
	}
	return Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		IsActive: user.IsActive,
	}
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

func (s *Auther) actorFromUser(user *User) ActorRef {
	if user == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   itoa(user.ID),
		Type: "user",
	}
}

var _ Authenticator = (*Auther)(nil)
