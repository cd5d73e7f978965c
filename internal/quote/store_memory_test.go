package quote

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewise/pkg/domain"
)

func seededQuote(t *testing.T, store *InMemoryStore, ref string) *Quote {
	t.Helper()
	q := &Quote{
		ID:        domain.NewQuoteID(),
		Reference: ref,
		Status:    domain.StatusQuoted,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(Validity),
	}
	require.NoError(t, store.Create(context.Background(), q))
	return q
}

func TestCreateRejectsDuplicateReference(t *testing.T) {
	store := NewInMemoryStore()
	seededQuote(t, store, "QAAAAAAAAA")

	dup := &Quote{ID: domain.NewQuoteID(), Reference: "QAAAAAAAAA", Status: domain.StatusQuoted}
	assert.ErrorIs(t, store.Create(context.Background(), dup), ErrDuplicateRef)
}

func TestUpdateCannotChangeReference(t *testing.T) {
	store := NewInMemoryStore()
	q := seededQuote(t, store, "QAAAAAAAAA")

	q.Reference = "QBBBBBBBBB"
	assert.ErrorIs(t, store.Update(context.Background(), q), ErrReferenceImmutable)
}

func TestTransitionStatusChecksExpected(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	q := seededQuote(t, store, "QAAAAAAAAA")

	require.NoError(t, store.TransitionStatus(ctx, q.ID, domain.StatusQuoted, domain.StatusBinding))

	err := store.TransitionStatus(ctx, q.ID, domain.StatusQuoted, domain.StatusExpired)
	assert.ErrorIs(t, err, ErrStatusConflict)

	got, err := store.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBinding, got.Status)
}

// TestConcurrentTransitionSingleWinner drives many goroutines through the
// same QUOTED -> BINDING swap and verifies exactly one succeeds.
func TestConcurrentTransitionSingleWinner(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	q := seededQuote(t, store, "QAAAAAAAAA")

	const goroutines = 50
	var wg sync.WaitGroup
	var wins atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.TransitionStatus(ctx, q.ID, domain.StatusQuoted, domain.StatusBinding); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	got, err := store.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBinding, got.Status)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	q := seededQuote(t, store, "QAAAAAAAAA")

	got, err := store.Get(ctx, q.ID)
	require.NoError(t, err)
	got.Status = domain.StatusBound

	again, err := store.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQuoted, again.Status)
}
