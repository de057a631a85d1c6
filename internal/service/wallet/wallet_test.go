package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
)

type fakeTransactions struct {
	txs       []model.WalletTransaction
	purchases map[uuid.UUID]model.PurchaseOrder
}

func (f *fakeTransactions) CreateTransaction(_ context.Context, t model.WalletTransaction) error {
	f.txs = append(f.txs, t)
	return nil
}

func (f *fakeTransactions) ListTransactions(_ context.Context, userID uuid.UUID, _ int) ([]model.WalletTransaction, error) {
	out := []model.WalletTransaction{}
	for _, t := range f.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) CreatePurchase(_ context.Context, p model.PurchaseOrder) error {
	f.purchases[p.ID] = p
	return nil
}

func (f *fakeTransactions) GetPurchaseByAuthority(_ context.Context, authority string) (model.PurchaseOrder, error) {
	for _, p := range f.purchases {
		if p.Authority == authority {
			return p, nil
		}
	}
	return model.PurchaseOrder{}, postgres.ErrNotFound
}

func (f *fakeTransactions) SettlePurchase(_ context.Context, id uuid.UUID, status model.PurchaseStatus, refID int64, at time.Time) error {
	p, ok := f.purchases[id]
	if !ok || p.Status != model.PurchasePending {
		return postgres.ErrNotFound
	}
	p.Status = status
	p.RefID = refID
	p.VerifiedAt = &at
	f.purchases[id] = p
	return nil
}

type fakeBalances struct {
	balances map[uuid.UUID]int64
}

func (f *fakeBalances) GetByUserID(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	b, ok := f.balances[userID]
	if !ok {
		return model.Profile{}, postgres.ErrNotFound
	}
	return model.Profile{UserID: userID, BDAGBalance: b}, nil
}

func (f *fakeBalances) AdjustBalance(_ context.Context, userID uuid.UUID, delta int64) (int64, error) {
	cur, ok := f.balances[userID]
	if !ok {
		return 0, postgres.ErrNotFound
	}
	if cur+delta < 0 {
		return 0, postgres.ErrInsufficientBalance
	}
	f.balances[userID] = cur + delta
	return cur + delta, nil
}

type fakeActivity struct{ rows []model.ActivityLog }

func (f *fakeActivity) Insert(_ context.Context, a model.ActivityLog) error {
	f.rows = append(f.rows, a)
	return nil
}

type fakeCooldowns struct {
	claimed map[uuid.UUID]bool
}

func (f *fakeCooldowns) Claim(_ context.Context, userID uuid.UUID, _ time.Duration) (bool, error) {
	if f.claimed[userID] {
		return false, nil
	}
	f.claimed[userID] = true
	return true, nil
}

type fakeGateway struct {
	verifyErr error
	refID     int64
}

func (f *fakeGateway) RequestPayment(_ context.Context, _ int64, _, _, _ string) (string, string, error) {
	return "A0001", "https://gateway.example/StartPay/A0001", nil
}

func (f *fakeGateway) VerifyPayment(_ context.Context, _ string, _ int64) (int64, string, bool, error) {
	if f.verifyErr != nil {
		return 0, "", false, f.verifyErr
	}
	return f.refID, "5022-29xx-xxxx-1234", false, nil
}

func (f *fakeGateway) CallbackURL() string { return "https://api.example/wallet/purchase/callback" }

type fixture struct {
	svc      Service
	txs      *fakeTransactions
	balances *fakeBalances
	gateway  *fakeGateway
	userID   uuid.UUID
}

func newFixture(balance int64) *fixture {
	f := &fixture{
		txs:     &fakeTransactions{purchases: map[uuid.UUID]model.PurchaseOrder{}},
		gateway: &fakeGateway{refID: 777},
		userID:  uuid.New(),
	}
	f.balances = &fakeBalances{balances: map[uuid.UUID]int64{f.userID: balance}}
	f.svc = New(Config{FaucetAmount: 50}, Deps{
		Transactions: f.txs,
		Balances:     f.balances,
		Activity:     &fakeActivity{},
		Cooldowns:    &fakeCooldowns{claimed: map[uuid.UUID]bool{}},
		Gateway:      f.gateway,
		Publisher:    nopPublisher{},
	})
	return f
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, uuid.UUID) {}

func TestFaucet(t *testing.T) {
	f := newFixture(0)

	balance, err := f.svc.Faucet(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	require.Len(t, f.txs.txs, 1)
	assert.Equal(t, model.TxFaucetClaim, f.txs.txs[0].TransactionType)

	// second claim inside the window is rejected and does not credit
	_, err = f.svc.Faucet(context.Background(), f.userID)
	assert.ErrorIs(t, err, ErrFaucetCooldown)
	assert.Equal(t, int64(50), f.balances.balances[f.userID])
}

func TestOverview(t *testing.T) {
	f := newFixture(120)

	_, err := f.svc.Faucet(context.Background(), f.userID)
	require.NoError(t, err)

	ov, err := f.svc.Overview(context.Background(), f.userID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(170), ov.Balance)
	assert.Len(t, ov.Transactions, 1)
}

func TestPurchaseRoundTrip(t *testing.T) {
	f := newFixture(0)

	start, err := f.svc.StartPurchase(context.Background(), f.userID, 200)
	require.NoError(t, err)
	assert.Equal(t, "A0001", start.Order.Authority)
	assert.Contains(t, start.PayURL, "A0001")
	assert.Equal(t, int64(0), f.balances.balances[f.userID], "no credit before verification")

	order, err := f.svc.CompletePurchase(context.Background(), "A0001", true)
	require.NoError(t, err)
	assert.Equal(t, model.PurchasePaid, order.Status)
	assert.Equal(t, int64(777), order.RefID)
	assert.Equal(t, int64(200), f.balances.balances[f.userID])

	// replayed callback cannot double-credit
	_, err = f.svc.CompletePurchase(context.Background(), "A0001", true)
	assert.ErrorIs(t, err, ErrPurchaseSettled)
	assert.Equal(t, int64(200), f.balances.balances[f.userID])
}

func TestPurchaseCancelled(t *testing.T) {
	f := newFixture(0)

	_, err := f.svc.StartPurchase(context.Background(), f.userID, 200)
	require.NoError(t, err)

	order, err := f.svc.CompletePurchase(context.Background(), "A0001", false)
	assert.ErrorIs(t, err, ErrPaymentIncomplete)
	assert.Equal(t, model.PurchaseFailed, order.Status)
	assert.Equal(t, int64(0), f.balances.balances[f.userID])
}

func TestPurchaseUnknownAuthority(t *testing.T) {
	f := newFixture(0)

	_, err := f.svc.CompletePurchase(context.Background(), "A9999", true)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}
