package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/repository"
	"github.com/pairbond/pairbond-server/internal/util"
)

// SessionService issues and resolves pair session tokens. Only the
// sha256 hash of a token is ever stored.
type SessionService struct {
	sessionRepo repository.PairSessionRepository
	ttl         time.Duration
}

func NewSessionService(sessionRepo repository.PairSessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
	}
}

// Issue creates a session for a participant who just created, joined, or
// logged into a pair, and returns the bearer token.
func (s *SessionService) Issue(ctx context.Context, pair *model.Pair, userName string) (string, *model.PairSession, error) {
	slot := pair.SlotOf(userName)
	if slot == 0 {
		return "", nil, apperrors.UnknownParticipant(userName)
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	session, err := s.sessionRepo.Create(ctx, model.CreatePairSessionParams{
		TokenHash: util.HashToken(token),
		PairCode:  pair.PairCode,
		UserName:  userName,
		UserSlot:  slot,
		ExpiresAt: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	log.Info().
		Str("pairCode", pair.PairCode).
		Int("slot", slot).
		Msg("session issued")

	return token, session, nil
}

// Resolve maps a bearer token to its live session, or nil when the token
// is unknown or expired.
func (s *SessionService) Resolve(ctx context.Context, token string) (*model.PairSession, error) {
	return s.sessionRepo.FindByTokenHash(ctx, util.HashToken(token))
}

// Revoke deletes the session for a logout.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if err := s.sessionRepo.DeleteByTokenHash(ctx, util.HashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
