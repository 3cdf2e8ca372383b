package session

import (
	"context"
	"sync"
	"testing"
	"time"

	domainErrors "qirsh/internal/errors"
	"qirsh/internal/models"
	"qirsh/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with the same conditional-update
// semantics as the postgres repository: TransitionFrom writes only
// when the status guard matches, under a single lock.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[uint]*models.QrPaymentSession
	byCode   map[string]uint
}

func newMemStore() *memStore {
	return &memStore{
		nextID:   1,
		sessions: make(map[uint]*models.QrPaymentSession),
		byCode:   make(map[string]uint),
	}
}

func (m *memStore) Create(_ context.Context, sess *models.QrPaymentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess.ID = m.nextID
	m.nextID++
	copied := *sess
	m.sessions[sess.ID] = &copied
	m.byCode[sess.SessionCode] = sess.ID
	return nil
}

func (m *memStore) FindByCode(_ context.Context, code string) (*models.QrPaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byCode[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *m.sessions[id]
	return &copied, nil
}

func (m *memStore) FindByID(_ context.Context, id uint) (*models.QrPaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (m *memStore) TransitionFrom(_ context.Context, id uint, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, st := range fromStatuses {
		if sess.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	applyUpdates(sess, updates)
	return true, nil
}

func applyUpdates(sess *models.QrPaymentSession, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			sess.Status = value.(string)
		case "customer_id":
			v := value.(uint)
			sess.CustomerID = &v
		case "scanned_at":
			v := value.(time.Time)
			sess.ScannedAt = &v
		case "original_amount":
			sess.OriginalAmount = floatPtr(value)
		case "discount_amount":
			sess.DiscountAmount = floatPtr(value)
		case "final_amount":
			sess.FinalAmount = floatPtr(value)
		case "bank_offer_id":
			if value == nil {
				sess.BankOfferID = nil
			} else {
				v := value.(uint)
				sess.BankOfferID = &v
			}
		case "gateway":
			sess.Gateway = value.(string)
		case "payment_method":
			sess.PaymentMethod = value.(string)
		case "payment_id":
			v := value.(uint)
			sess.PaymentID = &v
		case "gateway_transaction_id":
			sess.GatewayTransactionID = value.(string)
		case "completed_at":
			v := value.(time.Time)
			sess.CompletedAt = &v
		case "cancelled_by_id":
			v := value.(uint)
			sess.CancelledByID = &v
		case "cancelled_at":
			v := value.(time.Time)
			sess.CancelledAt = &v
		}
	}
}

func floatPtr(value interface{}) *float64 {
	if value == nil {
		return nil
	}
	v := value.(float64)
	return &v
}

func newTestService(t *testing.T) (Service, *memStore) {
	t.Helper()
	store := newMemStore()
	return NewService(store, nil), store
}

func createPending(t *testing.T, svc Service, ttl time.Duration) *models.QrPaymentSession {
	t.Helper()
	sess, err := svc.Create(context.Background(), CreateInput{
		RetailerID:  1,
		BranchID:    2,
		BrandID:     3,
		CreatedByID: 1,
		Amount:      20.0,
		Currency:    "JOD",
		TTL:         ttl,
	})
	require.NoError(t, err)
	return sess
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	sess := createPending(t, svc, 15*time.Minute)

	assert.Equal(t, models.SessionStatusPending, sess.Status)
	assert.NotEmpty(t, sess.SessionCode)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
	assert.Nil(t, sess.FinalAmount)

	// Codes must be unique per session.
	other := createPending(t, svc, 15*time.Minute)
	assert.NotEqual(t, sess.SessionCode, other.SessionCode)
}

func TestScan(t *testing.T) {
	t.Run("claims a pending session", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)

		scanned, err := svc.Scan(context.Background(), sess.SessionCode, 42)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusScanned, scanned.Status)
		require.NotNil(t, scanned.CustomerID)
		assert.Equal(t, uint(42), *scanned.CustomerID)
		assert.NotNil(t, scanned.ScannedAt)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Scan(context.Background(), "no-such-code", 42)
		assert.ErrorIs(t, err, domainErrors.ErrSessionNotFound)
	})

	t.Run("expired session", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, -time.Minute)

		_, err := svc.Scan(context.Background(), sess.SessionCode, 42)
		assert.ErrorIs(t, err, domainErrors.ErrSessionExpired)

		// Lazy expiry must have been persisted.
		stored, ferr := svc.Get(context.Background(), sess.SessionCode)
		require.NoError(t, ferr)
		assert.Equal(t, models.SessionStatusExpired, stored.Status)
	})

	t.Run("already scanned", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)

		_, err := svc.Scan(context.Background(), sess.SessionCode, 42)
		require.NoError(t, err)

		_, err = svc.Scan(context.Background(), sess.SessionCode, 43)
		assert.ErrorIs(t, err, domainErrors.ErrSessionAlreadyUsed)
	})

	t.Run("exactly one of N concurrent scans wins", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)

		const n = 20
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Scan(context.Background(), sess.SessionCode, uint(100+i))
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, domainErrors.ErrSessionAlreadyUsed)
			}
		}
		assert.Equal(t, 1, wins)
	})
}

func TestBeginProcessing(t *testing.T) {
	lock := ProcessingLock{
		OriginalAmount: 20,
		DiscountAmount: 3,
		FinalAmount:    17,
		Gateway:        models.GatewayCardProcessor,
		PaymentMethod:  models.MethodSavedCard,
	}

	t.Run("locks a scanned session", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, err := svc.Scan(context.Background(), sess.SessionCode, 42)
		require.NoError(t, err)

		locked, err := svc.BeginProcessing(context.Background(), sess, lock)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusProcessing, locked.Status)
		assert.Equal(t, 17.0, *locked.FinalAmount)
		assert.Equal(t, *locked.OriginalAmount-*locked.DiscountAmount, *locked.FinalAmount)
	})

	t.Run("rejects a pending session", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)

		_, err := svc.BeginProcessing(context.Background(), sess, lock)
		assert.ErrorIs(t, err, domainErrors.ErrSessionNotPayable)
	})

	t.Run("exactly one of N concurrent locks wins", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, err := svc.Scan(context.Background(), sess.SessionCode, 42)
		require.NoError(t, err)

		const n = 10
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				local := *sess
				_, errs[i] = svc.BeginProcessing(context.Background(), &local, lock)
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
			}
		}
		assert.Equal(t, 1, wins)
	})
}

func TestCompleteAndRelease(t *testing.T) {
	lock := ProcessingLock{
		OriginalAmount: 20,
		DiscountAmount: 3,
		FinalAmount:    17,
		Gateway:        models.GatewayCardProcessor,
		PaymentMethod:  models.MethodSavedCard,
	}

	t.Run("complete from processing", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, _ = svc.Scan(context.Background(), sess.SessionCode, 42)
		sess, err := svc.BeginProcessing(context.Background(), sess, lock)
		require.NoError(t, err)

		done, err := svc.Complete(context.Background(), sess, 7, "ch_123")
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusCompleted, done.Status)
		assert.Equal(t, "ch_123", done.GatewayTransactionID)
		assert.NotNil(t, done.CompletedAt)
	})

	t.Run("complete rejected outside processing", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, _ = svc.Scan(context.Background(), sess.SessionCode, 42)

		_, err := svc.Complete(context.Background(), sess, 7, "ch_123")
		assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	})

	t.Run("release returns to scanned and clears pricing", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, _ = svc.Scan(context.Background(), sess.SessionCode, 42)
		sess, err := svc.BeginProcessing(context.Background(), sess, lock)
		require.NoError(t, err)

		require.NoError(t, svc.ReleaseToScanned(context.Background(), sess))
		assert.Equal(t, models.SessionStatusScanned, sess.Status)
		assert.Nil(t, sess.FinalAmount)
		assert.Nil(t, sess.BankOfferID)

		// The same customer can retry.
		_, err = svc.BeginProcessing(context.Background(), sess, lock)
		assert.NoError(t, err)
	})

	t.Run("release is a no-op after completion", func(t *testing.T) {
		svc, store := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, _ = svc.Scan(context.Background(), sess.SessionCode, 42)
		sess, _ = svc.BeginProcessing(context.Background(), sess, lock)
		_, err := svc.Complete(context.Background(), sess, 7, "ch_123")
		require.NoError(t, err)

		require.NoError(t, svc.ReleaseToScanned(context.Background(), sess))
		stored, _ := store.FindByID(context.Background(), sess.ID)
		assert.Equal(t, models.SessionStatusCompleted, stored.Status)
	})
}

func TestCancel(t *testing.T) {
	t.Run("legal from pending and scanned", func(t *testing.T) {
		svc, _ := newTestService(t)

		pending := createPending(t, svc, 15*time.Minute)
		cancelled, err := svc.Cancel(context.Background(), pending, 9)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusCancelled, cancelled.Status)
		assert.Equal(t, uint(9), *cancelled.CancelledByID)

		scanned := createPending(t, svc, 15*time.Minute)
		scanned, _ = svc.Scan(context.Background(), scanned.SessionCode, 42)
		_, err = svc.Cancel(context.Background(), scanned, 9)
		assert.NoError(t, err)
	})

	t.Run("illegal from processing", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, _ = svc.Scan(context.Background(), sess.SessionCode, 42)
		sess, err := svc.BeginProcessing(context.Background(), sess, ProcessingLock{
			OriginalAmount: 20, FinalAmount: 20,
			Gateway: models.GatewayCliq, PaymentMethod: models.MethodCliq,
		})
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), sess, 9)
		assert.Error(t, err)
	})
}

func TestExpire(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		svc, _ := newTestService(t)
		sess := createPending(t, svc, -time.Minute)

		expired, err := svc.Expire(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusExpired, expired.Status)

		again, err := svc.Expire(context.Background(), expired)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusExpired, again.Status)
	})

	t.Run("does not touch completed sessions", func(t *testing.T) {
		svc, store := newTestService(t)
		sess := createPending(t, svc, 15*time.Minute)
		sess, _ = svc.Scan(context.Background(), sess.SessionCode, 42)
		sess, _ = svc.BeginProcessing(context.Background(), sess, ProcessingLock{
			OriginalAmount: 20, FinalAmount: 20,
			Gateway: models.GatewayCliq, PaymentMethod: models.MethodCliq,
		})
		sess, err := svc.Complete(context.Background(), sess, 7, "ch_1")
		require.NoError(t, err)

		_, err = svc.Expire(context.Background(), sess)
		require.NoError(t, err)
		stored, _ := store.FindByID(context.Background(), sess.ID)
		assert.Equal(t, models.SessionStatusCompleted, stored.Status)
	})
}
