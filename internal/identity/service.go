package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"frontera/internal/platform/metrics"
	dErrors "frontera/pkg/domain-errors"
	"frontera/pkg/platform/sentinel"
	"frontera/pkg/requestcontext"
)

// AuditPublisher receives login/logout events; identity only needs Emit.
type AuditPublisher interface {
	EmitAuth(ctx context.Context, userID, action, detail string)
}

// Service orchestrates login, registration, and logout.
type Service struct {
	accounts AccountStore
	tokens   *TokenService
	revoked  RevocationStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(audit AuditPublisher) Option {
	return func(s *Service) { s.audit = audit }
}

// New constructs a Service.
func New(accounts AccountStore, tokens *TokenService, revoked RevocationStore, opts ...Option) *Service {
	s := &Service{accounts: accounts, tokens: tokens, revoked: revoked}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult carries the token and profile returned to a fresh session.
type LoginResult struct {
	AccessToken string
	ExpiresIn   int
	User        User
}

// Login checks the demo credential table and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncLogin("failure")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.metrics.IncLogin("failure")
		s.logAudit(ctx, account.User.ID, "login_failed", "bad password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect credentials")
	}

	token, err := s.tokens.GenerateAccessToken(account.User)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncLogin("success")
	s.logAudit(ctx, account.User.ID, "login", "")
	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        account.User,
	}, nil
}

// RegisterRequest captures a self-service signup. New signups always become
// tourist accounts.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// Register creates a tourist account after applying the password policy:
// at least six characters, one uppercase letter, one special character.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name, email and password are required")
	}
	if err := checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account := Account{
		User: User{
			ID:          "USER_" + uuid.NewString(),
			Name:        req.Name,
			Role:        RoleTourist,
			Permissions: []string{PermDeclarations, PermUpload},
		},
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.logAudit(ctx, account.User.ID, "register", "")
	token, err := s.tokens.GenerateAccessToken(account.User)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        account.User,
	}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.parse(tokenString)
	if err != nil {
		return err
	}
	ttl := s.tokens.TTL()
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logAudit(ctx, claims.Subject, "logout", "")
	return nil
}

// Profile returns the stored user for the authenticated caller.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return account.User, nil
}

func checkPasswordPolicy(password string) error {
	if len(password) < 6 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return dErrors.New(dErrors.CodeValidation, "password must contain an uppercase letter")
	}
	if !strings.ContainsAny(password, "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?~`") {
		return dErrors.New(dErrors.CodeValidation, "password must contain a special character")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, userID, action, detail string) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, action,
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"device", requestcontext.Device(ctx),
			"log_type", "audit",
		)
	}
	if s.audit != nil {
		s.audit.EmitAuth(ctx, userID, action, detail)
	}
}
