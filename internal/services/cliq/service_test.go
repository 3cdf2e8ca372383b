package cliq

import (
	"context"
	"strings"
	"testing"
	"time"

	domainErrors "qirsh/internal/errors"
	"qirsh/internal/models"
	"qirsh/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, req *models.CliqPaymentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockStore) FindByRequestID(ctx context.Context, requestID string) (*models.CliqPaymentRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CliqPaymentRequest), args.Error(1)
}

func (m *MockStore) SupersedePending(ctx context.Context, sessionID uint) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockStore) ResolveFrom(ctx context.Context, id uint, toStatus string) (bool, error) {
	args := m.Called(ctx, id, toStatus)
	return args.Bool(0), args.Error(1)
}

type MockBanks struct {
	mock.Mock
}

func (m *MockBanks) FindByID(ctx context.Context, id uint) (*models.Bank, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bank), args.Error(1)
}

var input = InitiateInput{
	SessionID:     9,
	BankID:        1,
	Amount:        17.0,
	Currency:      "JOD",
	SenderAlias:   "CUST1",
	ReceiverAlias: "DEMORETAIL",
}

func TestInitiate(t *testing.T) {
	ctx := context.Background()

	t.Run("builds all three links when the bank has an app scheme", func(t *testing.T) {
		store := new(MockStore)
		banks := new(MockBanks)
		banks.On("FindByID", ctx, uint(1)).Return(&models.Bank{
			ID: 1, Name: "Arab Bank", Slug: "arab-bank",
			CliqScheme: "arabbank", CliqHost: "cliq.arabbank.jo",
			SupportsCliq: true,
		}, nil)
		store.On("SupersedePending", ctx, uint(9)).Return(nil)
		store.On("Create", ctx, mock.Anything).Return(nil)

		svc := NewService(store, banks)
		result, err := svc.Initiate(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, StatusPendingBankConfirmation, result.Status)
		assert.Equal(t, models.CliqStatusPending, result.Request.Status)
		assert.NotEmpty(t, result.Request.RequestID)
		assert.True(t, result.Request.ExpiresAt.After(time.Now()))

		require.NotNil(t, result.Links.DeepLink)
		assert.True(t, strings.HasPrefix(*result.Links.DeepLink, "arabbank://cliq.arabbank.jo/pay?"))
		assert.Contains(t, *result.Links.DeepLink, "amount=17.000")
		assert.Contains(t, *result.Links.DeepLink, "request_id="+result.Request.RequestID)
		assert.Contains(t, *result.Links.DeepLink, "alias=DEMORETAIL")
		assert.Contains(t, result.Links.UniversalLink, result.Request.RequestID)
		assert.NotEmpty(t, result.Links.FallbackURL)

		store.AssertExpectations(t)
	})

	t.Run("no deep-link mapping yields a nil deep link", func(t *testing.T) {
		store := new(MockStore)
		banks := new(MockBanks)
		banks.On("FindByID", ctx, uint(1)).Return(&models.Bank{
			ID: 1, Name: "Cairo Amman Bank", Slug: "cairo-amman", SupportsCliq: true,
		}, nil)
		store.On("SupersedePending", ctx, uint(9)).Return(nil)
		store.On("Create", ctx, mock.Anything).Return(nil)

		svc := NewService(store, banks)
		result, err := svc.Initiate(ctx, input)
		require.NoError(t, err)

		assert.Nil(t, result.Links.DeepLink)
		assert.NotEmpty(t, result.Links.UniversalLink)
		assert.NotEmpty(t, result.Links.FallbackURL)
		assert.Equal(t, StatusPendingBankConfirmation, result.Status)
	})

	t.Run("unknown bank", func(t *testing.T) {
		store := new(MockStore)
		banks := new(MockBanks)
		banks.On("FindByID", ctx, uint(1)).Return(nil, repositories.ErrNotFound)

		svc := NewService(store, banks)
		_, err := svc.Initiate(ctx, input)
		assert.ErrorIs(t, err, domainErrors.ErrBankNotFound)
	})

	t.Run("bank without cliq support", func(t *testing.T) {
		store := new(MockStore)
		banks := new(MockBanks)
		banks.On("FindByID", ctx, uint(1)).Return(&models.Bank{ID: 1, Slug: "no-cliq"}, nil)

		svc := NewService(store, banks)
		_, err := svc.Initiate(ctx, input)
		assert.ErrorIs(t, err, domainErrors.ErrBankNotFound)
	})

	t.Run("supersedes earlier pending requests", func(t *testing.T) {
		store := new(MockStore)
		banks := new(MockBanks)
		banks.On("FindByID", ctx, uint(1)).Return(&models.Bank{ID: 1, Slug: "arab-bank", SupportsCliq: true}, nil)
		store.On("SupersedePending", ctx, uint(9)).Return(nil).Once()
		store.On("Create", ctx, mock.Anything).Return(nil)

		svc := NewService(store, banks)
		_, err := svc.Initiate(ctx, input)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	pendingReq := func(expiresIn time.Duration) *models.CliqPaymentRequest {
		return &models.CliqPaymentRequest{
			ID:        3,
			RequestID: "req-1",
			SessionID: 9,
			Status:    models.CliqStatusPending,
			Amount:    17.0,
			ExpiresAt: time.Now().Add(expiresIn),
		}
	}

	t.Run("success resolves to succeeded", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindByRequestID", ctx, "req-1").Return(pendingReq(time.Minute), nil)
		store.On("ResolveFrom", ctx, uint(3), models.CliqStatusSucceeded).Return(true, nil)

		svc := NewService(store, new(MockBanks))
		req, err := svc.Resolve(ctx, "req-1", OutcomeSucceeded)
		require.NoError(t, err)
		assert.Equal(t, models.CliqStatusSucceeded, req.Status)
	})

	t.Run("failure resolves to failed", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindByRequestID", ctx, "req-1").Return(pendingReq(time.Minute), nil)
		store.On("ResolveFrom", ctx, uint(3), models.CliqStatusFailed).Return(true, nil)

		svc := NewService(store, new(MockBanks))
		req, err := svc.Resolve(ctx, "req-1", OutcomeFailed)
		require.NoError(t, err)
		assert.Equal(t, models.CliqStatusFailed, req.Status)
	})

	t.Run("late success on an expired request is rejected", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindByRequestID", ctx, "req-1").Return(pendingReq(-time.Minute), nil)
		store.On("ResolveFrom", ctx, uint(3), models.CliqStatusExpired).Return(true, nil)

		svc := NewService(store, new(MockBanks))
		req, err := svc.Resolve(ctx, "req-1", OutcomeSucceeded)
		assert.ErrorIs(t, err, domainErrors.ErrCliqRequestExpired)
		require.NotNil(t, req)
		assert.Equal(t, models.CliqStatusExpired, req.Status)
	})

	t.Run("superseded request cannot succeed", func(t *testing.T) {
		store := new(MockStore)
		superseded := pendingReq(time.Minute)
		superseded.Superseded = true
		store.On("FindByRequestID", ctx, "req-1").Return(superseded, nil)

		svc := NewService(store, new(MockBanks))
		_, err := svc.Resolve(ctx, "req-1", OutcomeSucceeded)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
		store.AssertNotCalled(t, "ResolveFrom", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already resolved request", func(t *testing.T) {
		store := new(MockStore)
		resolved := pendingReq(time.Minute)
		resolved.Status = models.CliqStatusSucceeded
		store.On("FindByRequestID", ctx, "req-1").Return(resolved, nil)

		svc := NewService(store, new(MockBanks))
		_, err := svc.Resolve(ctx, "req-1", OutcomeSucceeded)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	})

	t.Run("lost resolution race", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindByRequestID", ctx, "req-1").Return(pendingReq(time.Minute), nil)
		store.On("ResolveFrom", ctx, uint(3), models.CliqStatusSucceeded).Return(false, nil)

		svc := NewService(store, new(MockBanks))
		_, err := svc.Resolve(ctx, "req-1", OutcomeSucceeded)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	})

	t.Run("unknown request id", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindByRequestID", ctx, "missing").Return(nil, repositories.ErrNotFound)

		svc := NewService(store, new(MockBanks))
		_, err := svc.Resolve(ctx, "missing", OutcomeSucceeded)
		assert.ErrorIs(t, err, domainErrors.ErrCliqRequestNotFound)
	})
}
