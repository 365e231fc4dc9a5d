package courts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tennis-referee-service/internal/auth"
	"tennis-referee-service/internal/domain/courts"
	"tennis-referee-service/internal/logging"
	"tennis-referee-service/internal/providers"
)

var (
	// ErrUnknownCourt is returned for court ids missing from the catalog.
	ErrUnknownCourt = errors.New("unknown court")
	// ErrPINRequired rejects an authorization attempt without a PIN.
	ErrPINRequired = errors.New("pin required")
	// ErrInvalidPIN is returned when the score server rejects the PIN.
	ErrInvalidPIN = errors.New("invalid pin")
)

// Store defines the contract for reading the court catalog.
type Store interface {
	ListCourts() []courts.Court
	GetCourt(id string) (courts.Court, bool)
}

// Session is the outcome of a successful court authorization. Token is empty when
// session tokens are disabled.
type Session struct {
	CourtID   string    `json:"courtId"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Service exposes the court catalog and the referee PIN flow.
type Service struct {
	store      Store
	authorizer providers.CourtAuthorizer
	tokens     *auth.TokenManager
	logger     *slog.Logger
}

// NewService constructs a Service. tokens may be nil when sessions are not enforced.
func NewService(store Store, authorizer providers.CourtAuthorizer, tokens *auth.TokenManager, logger *slog.Logger) *Service {
	return &Service{store: store, authorizer: authorizer, tokens: tokens, logger: logger}
}

// Courts returns the current set of courts.
func (s *Service) Courts() []courts.Court {
	return s.store.ListCourts()
}

// AvailableCourts returns courts a referee may open a match on.
func (s *Service) AvailableCourts() []courts.Court {
	all := s.store.ListCourts()
	out := make([]courts.Court, 0, len(all))
	for _, c := range all {
		if c.IsAvailable {
			out = append(out, c)
		}
	}
	return out
}

// CourtByID returns a single court if present.
func (s *Service) CourtByID(id string) (courts.Court, bool) {
	return s.store.GetCourt(id)
}

// Authorize verifies a court PIN with the score server and opens a referee session.
func (s *Service) Authorize(ctx context.Context, courtID, pin string) (Session, error) {
	if _, ok := s.store.GetCourt(courtID); !ok {
		return Session{}, ErrUnknownCourt
	}
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return Session{}, ErrPINRequired
	}
	if s.authorizer == nil {
		return Session{}, providers.ErrProviderUnavailable
	}

	logger := logging.FromContext(ctx, s.logger)
	ok, err := s.authorizer.AuthorizeCourt(ctx, courtID, pin)
	if err != nil {
		return Session{}, fmt.Errorf("authorize court %s: %w", courtID, err)
	}
	if !ok {
		logging.Warn(logger, "court pin rejected", logging.FieldCourtID, courtID)
		return Session{}, ErrInvalidPIN
	}

	session := Session{CourtID: courtID}
	if s.tokens.Enabled() {
		token, expires, err := s.tokens.Issue(courtID)
		if err != nil {
			return Session{}, err
		}
		session.Token = token
		session.ExpiresAt = expires
	}
	logging.Info(logger, "court authorized", logging.FieldCourtID, courtID)
	return session, nil
}
