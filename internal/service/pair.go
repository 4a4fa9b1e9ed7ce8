package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/repository"
	"github.com/pairbond/pairbond-server/internal/util"
)

const pairCodeSpace = 100000 // PB-00000 .. PB-99999

// PairInfo is what authenticate returns to the presentation layer:
// display names only, never the passphrase hash.
type PairInfo struct {
	PairCode  string  `json:"pairCode"`
	PairName  string  `json:"pairName"`
	User1Name string  `json:"user1Name"`
	User2Name *string `json:"user2Name,omitempty"`
}

type PairService struct {
	pairRepo repository.PairRepository
}

func NewPairService(pairRepo repository.PairRepository) *PairService {
	return &PairService{pairRepo: pairRepo}
}

// Create registers a new pair with the creator in slot 1. The code is
// regenerated on collision until unique; the space is large relative to
// expected usage so the loop practically terminates immediately.
func (s *PairService) Create(ctx context.Context, pairName, passphrase, creatorName string) (*model.Pair, error) {
	var code string
	for {
		c, err := generatePairCode()
		if err != nil {
			return nil, fmt.Errorf("generate pair code: %w", err)
		}
		exists, err := s.pairRepo.Exists(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("check pair code: %w", err)
		}
		if !exists {
			code = c
			break
		}
	}

	pair, err := s.pairRepo.Create(ctx, model.CreatePairParams{
		PairCode:       code,
		PairName:       pairName,
		PassphraseHash: util.HashPassphrase(passphrase),
		User1Name:      creatorName,
	})
	if err != nil {
		return nil, fmt.Errorf("create pair: %w", err)
	}

	log.Info().
		Str("pairCode", pair.PairCode).
		Str("pairName", pairName).
		Msg("pair created")

	return pair, nil
}

// Join claims the second participant slot. The claim is a single
// conditional update, so of two simultaneous joiners exactly one wins.
func (s *PairService) Join(ctx context.Context, code, passphrase, joinerName string) (*model.Pair, error) {
	normalized := NormalizeCode(code)

	pair, err := s.pairRepo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("find pair: %w", err)
	}
	if pair == nil {
		return nil, apperrors.PairNotFound()
	}

	if !util.ConstantTimeEqual(util.HashPassphrase(passphrase), pair.PassphraseHash) {
		log.Warn().Str("pairCode", util.MaskCode(normalized)).Msg("join attempt with wrong passphrase")
		return nil, apperrors.AuthFailed()
	}

	if pair.IsComplete() {
		return nil, apperrors.AlreadyComplete()
	}

	claimed, err := s.pairRepo.ClaimPartnerSlot(ctx, normalized, joinerName)
	if err != nil {
		return nil, fmt.Errorf("claim partner slot: %w", err)
	}
	if !claimed {
		// another joiner won the slot between the read and the update
		return nil, apperrors.AlreadyComplete()
	}

	pair.User2Name = &joinerName

	log.Info().
		Str("pairCode", pair.PairCode).
		Str("pairName", pair.PairName).
		Msg("partner joined pair")

	return pair, nil
}

// Authenticate verifies the passphrase against the stored digest without
// mutating anything.
func (s *PairService) Authenticate(ctx context.Context, code, passphrase string) (*model.Pair, error) {
	normalized := NormalizeCode(code)

	pair, err := s.pairRepo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("find pair: %w", err)
	}
	if pair == nil {
		return nil, apperrors.PairNotFound()
	}

	if !util.ConstantTimeEqual(util.HashPassphrase(passphrase), pair.PassphraseHash) {
		log.Warn().Str("pairCode", util.MaskCode(normalized)).Msg("authentication failed")
		return nil, apperrors.AuthFailed()
	}

	return pair, nil
}

// Get returns the pair row for an already-authenticated caller.
func (s *PairService) Get(ctx context.Context, code string) (*model.Pair, error) {
	pair, err := s.pairRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find pair: %w", err)
	}
	if pair == nil {
		return nil, apperrors.PairNotFound()
	}
	return pair, nil
}

func Info(pair *model.Pair) PairInfo {
	return PairInfo{
		PairCode:  pair.PairCode,
		PairName:  pair.PairName,
		User1Name: pair.User1Name,
		User2Name: pair.User2Name,
	}
}

// NormalizeCode uppercases and trims a user-supplied pair code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generatePairCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pairCodeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PB-%05d", n.Int64()), nil
}
