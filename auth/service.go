// Package auth implements password authentication, bearer token
// issuance and verification, and organization member management under
// the seat entitlement rules.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/subman/entitlement"
	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/pkg/jwt"
	"github.com/dmitrymomot/subman/pkg/logger"
	"github.com/dmitrymomot/subman/user"
)

const tokenTTL = 24 * time.Hour

// Service owns authentication and member management.
type Service struct {
	users  user.Store
	orgs   organization.Store
	seats  *entitlement.Engine
	tokens *jwt.Service
	logger *slog.Logger
}

// NewService creates the auth service.
func NewService(users user.Store, orgs organization.Store, seats *entitlement.Engine, tokens *jwt.Service, log *slog.Logger) *Service {
	if users == nil || orgs == nil || seats == nil || tokens == nil {
		panic("auth: all dependencies are required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		users:  users,
		orgs:   orgs,
		seats:  seats,
		tokens: tokens,
		logger: log.With(logger.Component("auth")),
	}
}

// OrganizationSummary is the slice of organization state a login
// response exposes. IsNew reports a trial organization that has never
// reached checkout, which the client uses to prompt plan selection.
type OrganizationSummary struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	SubscriptionStatus organization.Status `json:"subscriptionStatus"`
	IsNew              bool                `json:"isNewOrganization"`
}

// Session is a successful login: the bearer token and the identities it
// belongs to.
type Session struct {
	Token        string               `json:"token"`
	User         *user.User           `json:"user"`
	Organization *OrganizationSummary `json:"organization,omitempty"`
}

// Login verifies credentials and issues a 24-hour bearer token. Every
// failure mode returns ErrInvalidCredentials; inactive accounts are
// indistinguishable from unknown ones.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	token, err := s.tokens.Generate(AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tokenTTL).Unix(),
		},
		Role: u.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	session := &Session{Token: token, User: u}

	// Superadmins are not bound to a tenant organization.
	if u.OrganizationID != "" {
		org, err := s.orgs.GetByID(ctx, u.OrganizationID)
		if err == nil {
			session.Organization = &OrganizationSummary{
				ID:                 org.ID,
				Name:               org.Name,
				SubscriptionStatus: org.SubscriptionStatus,
				IsNew:              org.SubscriptionStatus == organization.StatusTrialing && org.StripeCustomerID == "",
			}
		} else if !errors.Is(err, organization.ErrNotFound) {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "user logged in",
		logger.UserID(u.ID),
		slog.String("role", string(u.Role)),
	)

	return session, nil
}

// authenticate resolves a bearer token to its live user record. Tokens
// whose user is gone or deactivated are rejected; the token is a key,
// not a cache.
func (s *Service) authenticate(ctx context.Context, token string) (*user.User, error) {
	var claims AccessClaims
	if err := s.tokens.Parse(token, &claims); err != nil {
		return nil, ErrUnauthenticated
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUnauthenticated
	}
	return u, nil
}
