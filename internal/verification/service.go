package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"agri-marketplace/internal/common/clock"
	apperrors "agri-marketplace/internal/common/errors"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/common/metrics"
	"agri-marketplace/internal/common/validation"
)

const (
	DefaultCodeTTL = 10 * time.Minute
	// DefaultMaxFailures wrong guesses discard the code.
	DefaultMaxFailures = 5
	codeDigits     = 6

	mailSubject = "Your verification code"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Issued struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Option func(*Service)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.newCode = fn }
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMaxFailures sets how many wrong codes discard the issued one. Zero
// disables the limit.
func WithMaxFailures(n int) Option {
	return func(s *Service) { s.maxFailures = n }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service issues codes keyed by email address. A code is valid once, until
// its TTL passes.
type Service struct {
	cache   Cache
	mailer  Mailer
	ttl     time.Duration
	clock   clock.Clock
	newCode func() (string, error)
	logger  logger.Logger

	maxFailures int
}

func NewService(cache Cache, mailer Mailer, ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	s := &Service{
		cache:   cache,
		mailer:  mailer,
		ttl:     ttl,
		clock:   clock.NewSystem(),
		newCode: randomCode,
		logger:  logger.NewNoOpLogger(),

		maxFailures: DefaultMaxFailures,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue stores a fresh code for email, replacing any earlier one, and mails it.
func (s *Service) Issue(ctx context.Context, email string) (*Issued, error) {
	email = normalizeEmail(email)
	if !validation.ValidateEmail(email) {
		return nil, apperrors.NewValidationError("invalid email address")
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	if err := s.cache.Put(ctx, email, code, s.ttl); err != nil {
		return nil, apperrors.NewPersistenceError("verification code", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.mailer.Send(ctx, email, mailSubject, body); err != nil {
		if delErr := s.cache.Delete(ctx, email); delErr != nil {
			s.logger.Warn("Failed to discard unsent code", map[string]interface{}{"error": delErr})
		}
		return nil, apperrors.NewChannelError("email", err)
	}

	metrics.VerificationCodes.WithLabelValues("issued").Inc()
	s.logger.Info("Verification code issued", map[string]interface{}{"email": email})
	return &Issued{Email: email, ExpiresAt: s.clock.Now().Add(s.ttl)}, nil
}

// Verify consumes the code for email. Missing, expired and mismatched codes
// all yield CODE_INVALID; a mismatch leaves the stored code in place until
// the failure limit discards it.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return apperrors.NewValidationError("email and code are required")
	}

	result, err := s.cache.Redeem(ctx, email, code, s.maxFailures)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("redeem verification code", err)
	}

	switch result {
	case RedeemMatched:
		metrics.VerificationCodes.WithLabelValues("verified").Inc()
		return nil
	case RedeemExhausted:
		metrics.VerificationCodes.WithLabelValues("exhausted").Inc()
		s.logger.Warn("Verification code discarded after repeated failures", map[string]interface{}{"email": email})
	default:
		metrics.VerificationCodes.WithLabelValues("rejected").Inc()
	}
	return apperrors.NewCodeInvalidError(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
