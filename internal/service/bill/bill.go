// Package bill manages medical bills and their payment from the patient's
// token balance.
package bill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/util/codes"
)

type Repo interface {
	Create(ctx context.Context, b model.MedicalBill) error
	GetByID(ctx context.Context, id uuid.UUID) (model.MedicalBill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.MedicalBill, error)
	MarkPaid(ctx context.Context, id uuid.UUID, txHash string, paidAt time.Time) error
}

type BalanceRepo interface {
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (int64, error)
}

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, t model.WalletTransaction) error
}

type ActivityRepo interface {
	Insert(ctx context.Context, a model.ActivityLog) error
}

type Publisher interface {
	Publish(subject string, payloadID uuid.UUID)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateInput struct {
	UserID      uuid.UUID
	HospitalID  *uuid.UUID
	Amount      int64
	Category    string
	Description string
}

type PaymentResult struct {
	Bill       model.MedicalBill
	NewBalance int64
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*model.MedicalBill, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.MedicalBill, error)
	Pay(ctx context.Context, userID, billID uuid.UUID) (*PaymentResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type billService struct {
	bills        Repo
	balances     BalanceRepo
	transactions TransactionRepo
	activity     ActivityRepo
	pub          Publisher

	now func() time.Time
}

type Deps struct {
	Bills        Repo
	Balances     BalanceRepo
	Transactions TransactionRepo
	Activity     ActivityRepo
	Publisher    Publisher
}

func New(d Deps) Service {
	return &billService{
		bills:        d.Bills,
		balances:     d.Balances,
		transactions: d.Transactions,
		activity:     d.Activity,
		pub:          d.Publisher,
		now:          time.Now,
	}
}

func (s *billService) Create(ctx context.Context, in CreateInput) (*model.MedicalBill, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	b := model.MedicalBill{
		ID:          uuid.New(),
		UserID:      in.UserID,
		HospitalID:  in.HospitalID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Status:      model.BillPending,
		CreatedAt:   s.now(),
	}
	if err := s.bills.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	return &b, nil
}

func (s *billService) List(ctx context.Context, userID uuid.UUID) ([]model.MedicalBill, error) {
	return s.bills.ListByUser(ctx, userID)
}

// Pay debits the bill amount from the user's token balance and marks the bill
// paid. The debit happens first; if the paid-flip then loses a race the debit
// is reversed.
func (s *billService) Pay(ctx context.Context, userID, billID uuid.UUID) (*PaymentResult, error) {
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrBillNotFound
	}
	if b.Status != model.BillPending {
		return nil, ErrAlreadyPaid
	}

	balance, err := s.balances.AdjustBalance(ctx, userID, -b.Amount)
	if err != nil {
		if errors.Is(err, postgres.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	now := s.now()
	txHash, err := txHash()
	if err != nil {
		_, _ = s.balances.AdjustBalance(ctx, userID, b.Amount)
		return nil, err
	}

	if err := s.bills.MarkPaid(ctx, billID, txHash, now); err != nil {
		// Already paid by a concurrent call; give the tokens back.
		if _, rerr := s.balances.AdjustBalance(ctx, userID, b.Amount); rerr != nil {
			return nil, fmt.Errorf("refund after failed payment: %w", rerr)
		}
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	_ = s.transactions.CreateTransaction(ctx, model.WalletTransaction{
		ID:              uuid.New(),
		UserID:          userID,
		TransactionType: model.TxBillPayment,
		Amount:          -b.Amount,
		TransactionHash: txHash,
		Status:          model.TxConfirmed,
		CreatedAt:       now,
	})

	_ = s.activity.Insert(ctx, model.ActivityLog{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: model.ActivityPayment,
		Title:        "Paid medical bill",
		Description:  b.Description,
		Metadata:     map[string]any{"bill_id": billID.String(), "amount": b.Amount},
		CreatedAt:    now,
	})

	b.Status = model.BillPaid
	b.TransactionHash = txHash
	b.PaidAt = &now

	s.pub.Publish(events.BillPaid(userID), billID)
	return &PaymentResult{Bill: b, NewBalance: balance}, nil
}

func txHash() (string, error) {
	h, err := codes.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate tx hash: %w", err)
	}
	return "0x" + h, nil
}
