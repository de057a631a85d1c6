package bill

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

type fakeBills struct {
	rows map[uuid.UUID]model.MedicalBill
}

func (f *fakeBills) Create(_ context.Context, b model.MedicalBill) error {
	f.rows[b.ID] = b
	return nil
}

func (f *fakeBills) GetByID(_ context.Context, id uuid.UUID) (model.MedicalBill, error) {
	b, ok := f.rows[id]
	if !ok {
		return model.MedicalBill{}, postgres.ErrNotFound
	}
	return b, nil
}

func (f *fakeBills) ListByUser(_ context.Context, userID uuid.UUID) ([]model.MedicalBill, error) {
	out := []model.MedicalBill{}
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBills) MarkPaid(_ context.Context, id uuid.UUID, txHash string, paidAt time.Time) error {
	b, ok := f.rows[id]
	if !ok || b.Status != model.BillPending {
		return postgres.ErrNotFound
	}
	b.Status = model.BillPaid
	b.TransactionHash = txHash
	b.PaidAt = &paidAt
	f.rows[id] = b
	return nil
}

type fakeBalances struct {
	balances map[uuid.UUID]int64
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

type fakeTransactions struct{ rows []model.WalletTransaction }

func (f *fakeTransactions) CreateTransaction(_ context.Context, t model.WalletTransaction) error {
	f.rows = append(f.rows, t)
	return nil
}

type fakeActivity struct{ rows []model.ActivityLog }

func (f *fakeActivity) Insert(_ context.Context, a model.ActivityLog) error {
	f.rows = append(f.rows, a)
	return nil
}

type fakePublisher struct{ published []string }

func (f *fakePublisher) Publish(subject string, _ uuid.UUID) {
	f.published = append(f.published, subject)
}

type fixture struct {
	svc      Service
	bills    *fakeBills
	balances *fakeBalances
	txs      *fakeTransactions
	activity *fakeActivity
	userID   uuid.UUID
}

func newFixture(balance int64) *fixture {
	f := &fixture{
		bills:    &fakeBills{rows: map[uuid.UUID]model.MedicalBill{}},
		txs:      &fakeTransactions{},
		activity: &fakeActivity{},
		userID:   uuid.New(),
	}
	f.balances = &fakeBalances{balances: map[uuid.UUID]int64{f.userID: balance}}
	f.svc = New(Deps{
		Bills:        f.bills,
		Balances:     f.balances,
		Transactions: f.txs,
		Activity:     f.activity,
		Publisher:    &fakePublisher{},
	})
	return f
}

func TestPay(t *testing.T) {
	f := newFixture(100)

	b, err := f.svc.Create(context.Background(), CreateInput{
		UserID:      f.userID,
		Amount:      40,
		Category:    "consultation",
		Description: "Follow-up visit",
	})
	require.NoError(t, err)

	res, err := f.svc.Pay(context.Background(), f.userID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.NewBalance)
	assert.Equal(t, model.BillPaid, res.Bill.Status)
	assert.NotEmpty(t, res.Bill.TransactionHash)

	// a confirmed debit transaction is recorded
	require.Len(t, f.txs.rows, 1)
	assert.Equal(t, int64(-40), f.txs.rows[0].Amount)
	assert.Equal(t, model.TxBillPayment, f.txs.rows[0].TransactionType)

	require.Len(t, f.activity.rows, 1)
	assert.Equal(t, model.ActivityPayment, f.activity.rows[0].ActivityType)
}

func TestPayInsufficientBalance(t *testing.T) {
	f := newFixture(10)

	b, err := f.svc.Create(context.Background(), CreateInput{UserID: f.userID, Amount: 40})
	require.NoError(t, err)

	_, err = f.svc.Pay(context.Background(), f.userID, b.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(10), f.balances.balances[f.userID], "balance untouched")
	assert.Equal(t, model.BillPending, f.bills.rows[b.ID].Status)
}

func TestPayTwice(t *testing.T) {
	f := newFixture(100)

	b, err := f.svc.Create(context.Background(), CreateInput{UserID: f.userID, Amount: 40})
	require.NoError(t, err)

	_, err = f.svc.Pay(context.Background(), f.userID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Pay(context.Background(), f.userID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, int64(60), f.balances.balances[f.userID], "paid only once")
}

func TestPayForeignBill(t *testing.T) {
	f := newFixture(100)

	b, err := f.svc.Create(context.Background(), CreateInput{UserID: uuid.New(), Amount: 40})
	require.NoError(t, err)

	_, err = f.svc.Pay(context.Background(), f.userID, b.ID)
	assert.ErrorIs(t, err, ErrBillNotFound)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(0)

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: f.userID, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
