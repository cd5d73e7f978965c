package policy

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewise/internal/rating"
	"lanewise/pkg/domain"
	derrors "lanewise/pkg/domain-errors"
	"lanewise/pkg/requestcontext"
)

var effectiveAt = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func testPolicyService(t *testing.T) (*Service, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	return NewService(store, nil, slog.Default()), store
}

func seedPolicy(t *testing.T, store *InMemoryStore, status domain.PolicyStatus) *Policy {
	t.Helper()
	p := &Policy{
		ID:        domain.NewPolicyID(),
		Reference: "PX7K2MNP4R",
		QuoteID:   domain.NewQuoteID(),
		QuoteRef:  "QX7K2MNP4R",
		Status:    status,
		Breakdown: rating.PremiumBreakdown{
			Subtotal: decimal.RequireFromString("555.50"),
			Total:    decimal.RequireFromString("590.50"),
		},
		Payment:     PaymentRecord{Method: domain.PaymentCard, Last4: "1111", Brand: "visa", Token: "tok_abc"},
		EffectiveAt: effectiveAt,
		ExpiresAt:   effectiveAt.Add(Term),
		BoundAt:     effectiveAt.Add(-10 * 24 * time.Hour),
	}
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func ctxAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}

func TestActivateOnEffectiveDate(t *testing.T) {
	svc, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyBound)

	got, err := svc.Activate(ctxAt(effectiveAt), p.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyInForce, got.Status)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyInForce, stored.Status)
}

func TestActivateBeforeEffectiveDateRejected(t *testing.T) {
	svc, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyBound)

	_, err := svc.Activate(ctxAt(effectiveAt.Add(-time.Hour)), p.Reference)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidTransition))

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyBound, stored.Status)
}

func TestActivateTwiceRejected(t *testing.T) {
	svc, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyBound)

	_, err := svc.Activate(ctxAt(effectiveAt), p.Reference)
	require.NoError(t, err)
	_, err = svc.Activate(ctxAt(effectiveAt.Add(time.Hour)), p.Reference)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidTransition))
}

func TestCancelInForcePolicy(t *testing.T) {
	svc, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyInForce)

	cancelledAt := effectiveAt.Add(30 * 24 * time.Hour)
	got, err := svc.Cancel(ctxAt(cancelledAt), p.Reference, "non-payment")
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.Equal(t, cancelledAt, *got.CancelledAt)
}

func TestCancelBoundPolicyRejected(t *testing.T) {
	svc, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyBound)

	_, err := svc.Cancel(ctxAt(effectiveAt), p.Reference, "non-payment")
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidTransition))
}

func TestCancelledIsTerminal(t *testing.T) {
	svc, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyInForce)

	_, err := svc.Cancel(ctxAt(effectiveAt), p.Reference, "fraud")
	require.NoError(t, err)
	_, err = svc.Activate(ctxAt(effectiveAt), p.Reference)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidTransition))
}

func TestGetUnknownReference(t *testing.T) {
	svc, _ := testPolicyService(t)
	_, err := svc.Get(context.Background(), "PZZZZZZZZZ")
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestOnePolicyPerQuote(t *testing.T) {
	_, store := testPolicyService(t)
	p := seedPolicy(t, store, domain.PolicyBound)

	dup := &Policy{
		ID:        domain.NewPolicyID(),
		Reference: "PAAAAAAAAA",
		QuoteID:   p.QuoteID,
		Status:    domain.PolicyBound,
	}
	assert.ErrorIs(t, store.Create(context.Background(), dup), ErrQuoteBound)
}

func TestInTerm(t *testing.T) {
	p := &Policy{EffectiveAt: effectiveAt, ExpiresAt: effectiveAt.Add(Term)}

	assert.False(t, p.InTerm(effectiveAt.Add(-time.Second)))
	assert.True(t, p.InTerm(effectiveAt))
	assert.True(t, p.InTerm(effectiveAt.Add(Term-time.Second)))
	assert.False(t, p.InTerm(effectiveAt.Add(Term)))
}
