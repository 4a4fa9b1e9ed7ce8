package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/util"
)

// Mock pair repository
type mockPairRepo struct {
	mock.Mock
}

func (m *mockPairRepo) FindByCode(ctx context.Context, code string) (*model.Pair, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pair), args.Error(1)
}

func (m *mockPairRepo) Exists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockPairRepo) Create(ctx context.Context, params model.CreatePairParams) (*model.Pair, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pair), args.Error(1)
}

func (m *mockPairRepo) ClaimPartnerSlot(ctx context.Context, code, joinerName string) (bool, error) {
	args := m.Called(ctx, code, joinerName)
	return args.Bool(0), args.Error(1)
}

func storedPair(user2 *string) *model.Pair {
	return &model.Pair{
		PairCode:       "PB-12345",
		PairName:       "Alex & Sam",
		PassphraseHash: util.HashPassphrase("secret123"),
		User1Name:      "Alex",
		User2Name:      user2,
	}
}

func TestPairServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pair with generated code", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(p model.CreatePairParams) bool {
			return p.PairName == "Alex & Sam" &&
				p.User1Name == "Alex" &&
				p.PassphraseHash == util.HashPassphrase("secret123")
		})).Return(storedPair(nil), nil).Once()

		pair, err := svc.Create(ctx, "Alex & Sam", "secret123", "Alex")
		require.NoError(t, err)
		assert.Equal(t, "Alex & Sam", pair.PairName)
		repo.AssertExpectations(t)
	})

	t.Run("regenerates code on collision", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("Exists", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
		repo.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("Create", ctx, mock.AnythingOfType("model.CreatePairParams")).Return(storedPair(nil), nil).Once()

		_, err := svc.Create(ctx, "Alex & Sam", "secret123", "Alex")
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Exists", 2)
	})

	t.Run("never stores the plaintext passphrase", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p model.CreatePairParams) bool {
			return p.PassphraseHash != "secret123"
		})).Return(storedPair(nil), nil)

		_, err := svc.Create(ctx, "Alex & Sam", "secret123", "Alex")
		require.NoError(t, err)
	})
}

func TestPairServiceJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("joins an open pair", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("FindByCode", ctx, "PB-12345").Return(storedPair(nil), nil)
		repo.On("ClaimPartnerSlot", ctx, "PB-12345", "Sam").Return(true, nil)

		pair, err := svc.Join(ctx, "pb-12345", "secret123", "Sam")
		require.NoError(t, err)
		require.NotNil(t, pair.User2Name)
		assert.Equal(t, "Sam", *pair.User2Name)
	})

	t.Run("fails with PairNotFound for unknown code", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("FindByCode", ctx, "PB-99999").Return(nil, nil)

		_, err := svc.Join(ctx, "PB-99999", "secret123", "Sam")
		assert.Equal(t, apperrors.ErrCodePairNotFound, apperrors.GetCode(err))
	})

	t.Run("fails with AuthFailed for wrong passphrase", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("FindByCode", ctx, "PB-12345").Return(storedPair(nil), nil)

		_, err := svc.Join(ctx, "PB-12345", "wrong", "Sam")
		assert.Equal(t, apperrors.ErrCodeAuthFailed, apperrors.GetCode(err))
	})

	t.Run("fails with AlreadyComplete regardless of passphrase", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		sam := "Sam"
		repo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)

		_, err := svc.Join(ctx, "PB-12345", "secret123", "Jordan")
		assert.Equal(t, apperrors.ErrCodeAlreadyComplete, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "ClaimPartnerSlot", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("loses the slot race cleanly", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		// the read sees an open slot but another joiner claims it first
		repo.On("FindByCode", ctx, "PB-12345").Return(storedPair(nil), nil)
		repo.On("ClaimPartnerSlot", ctx, "PB-12345", "Jordan").Return(false, nil)

		_, err := svc.Join(ctx, "PB-12345", "secret123", "Jordan")
		assert.Equal(t, apperrors.ErrCodeAlreadyComplete, apperrors.GetCode(err))
	})
}

func TestPairServiceAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds with correct passphrase", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		sam := "Sam"
		repo.On("FindByCode", ctx, "PB-12345").Return(storedPair(&sam), nil)

		pair, err := svc.Authenticate(ctx, "PB-12345", "secret123")
		require.NoError(t, err)

		info := Info(pair)
		assert.Equal(t, "Alex & Sam", info.PairName)
		assert.Equal(t, "Alex", info.User1Name)
		assert.Equal(t, "Sam", *info.User2Name)
	})

	t.Run("fails with AuthFailed and returns no pair details", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("FindByCode", ctx, "PB-12345").Return(storedPair(nil), nil)

		pair, err := svc.Authenticate(ctx, "PB-12345", "wrong")
		assert.Equal(t, apperrors.ErrCodeAuthFailed, apperrors.GetCode(err))
		assert.Nil(t, pair)
	})

	t.Run("fails with PairNotFound for unknown code", func(t *testing.T) {
		repo := new(mockPairRepo)
		svc := NewPairService(repo)

		repo.On("FindByCode", ctx, "PB-00000").Return(nil, nil)

		_, err := svc.Authenticate(ctx, "PB-00000", "secret123")
		assert.Equal(t, apperrors.ErrCodePairNotFound, apperrors.GetCode(err))
	})
}

func TestGeneratePairCode(t *testing.T) {
	t.Run("matches PB-NNNNN format", func(t *testing.T) {
		pattern := regexp.MustCompile(`^PB-\d{5}$`)
		for i := 0; i < 100; i++ {
			code, err := generatePairCode()
			require.NoError(t, err)
			assert.True(t, pattern.MatchString(code), "code should match PB-NNNNN format, got: %s", code)
		}
	})
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "PB-12345", NormalizeCode("  pb-12345 "))
	assert.Equal(t, "PB-12345", NormalizeCode("PB-12345"))
}
