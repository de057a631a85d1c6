// Package wallet manages the testnet token balance: transaction history, the
// daily faucet, and card-payment token purchases through the hosted gateway.
package wallet

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

type TransactionRepo interface {
	CreateTransaction(ctx context.Context, t model.WalletTransaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]model.WalletTransaction, error)
	CreatePurchase(ctx context.Context, p model.PurchaseOrder) error
	GetPurchaseByAuthority(ctx context.Context, authority string) (model.PurchaseOrder, error)
	SettlePurchase(ctx context.Context, id uuid.UUID, status model.PurchaseStatus, refID int64, at time.Time) error
}

type BalanceRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (int64, error)
}

type ActivityRepo interface {
	Insert(ctx context.Context, a model.ActivityLog) error
}

type Publisher interface {
	Publish(subject string, payloadID uuid.UUID)
}

// Cooldowns rate-limits faucet claims. Claim returns false while a previous
// claim's window is still open.
type Cooldowns interface {
	Claim(ctx context.Context, userID uuid.UUID, window time.Duration) (bool, error)
}

// Gateway is the slice of the payment gateway client the service needs.
type Gateway interface {
	RequestPayment(ctx context.Context, amount int64, currency, desc, callbackURL string) (authority, payURL string, err error)
	VerifyPayment(ctx context.Context, authority string, amount int64) (refID int64, cardPan string, alreadyVerified bool, err error)
	CallbackURL() string
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Overview struct {
	Balance      int64
	Transactions []model.WalletTransaction
}

type PurchaseStart struct {
	Order  model.PurchaseOrder
	PayURL string
}

type Service interface {
	Overview(ctx context.Context, userID uuid.UUID, limit int) (*Overview, error)
	Faucet(ctx context.Context, userID uuid.UUID) (int64, error)
	StartPurchase(ctx context.Context, userID uuid.UUID, amount int64) (*PurchaseStart, error)
	CompletePurchase(ctx context.Context, authority string, ok bool) (*model.PurchaseOrder, error)
}

type Config struct {
	FaucetAmount   int64
	FaucetCooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.FaucetAmount <= 0 {
		c.FaucetAmount = 50
	}
	if c.FaucetCooldown <= 0 {
		c.FaucetCooldown = 24 * time.Hour
	}
	return c
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type walletService struct {
	cfg Config

	transactions TransactionRepo
	balances     BalanceRepo
	activity     ActivityRepo
	cooldowns    Cooldowns
	gateway      Gateway
	pub          Publisher

	now func() time.Time
}

type Deps struct {
	Transactions TransactionRepo
	Balances     BalanceRepo
	Activity     ActivityRepo
	Cooldowns    Cooldowns
	Gateway      Gateway
	Publisher    Publisher
}

func New(cfg Config, d Deps) Service {
	return &walletService{
		cfg:          cfg.withDefaults(),
		transactions: d.Transactions,
		balances:     d.Balances,
		activity:     d.Activity,
		cooldowns:    d.Cooldowns,
		gateway:      d.Gateway,
		pub:          d.Publisher,
		now:          time.Now,
	}
}

func (s *walletService) Overview(ctx context.Context, userID uuid.UUID, limit int) (*Overview, error) {
	p, err := s.balances.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	txs, err := s.transactions.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &Overview{Balance: p.BDAGBalance, Transactions: txs}, nil
}

// Faucet credits the configured amount once per cooldown window. The window
// claim happens before the credit so a concurrent double-claim cannot pay out
// twice.
func (s *walletService) Faucet(ctx context.Context, userID uuid.UUID) (int64, error) {
	ok, err := s.cooldowns.Claim(ctx, userID, s.cfg.FaucetCooldown)
	if err != nil {
		return 0, fmt.Errorf("claim cooldown: %w", err)
	}
	if !ok {
		return 0, ErrFaucetCooldown
	}

	balance, err := s.balances.AdjustBalance(ctx, userID, s.cfg.FaucetAmount)
	if err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}

	now := s.now()
	hash, err := codes.GenerateSecureToken(32)
	if err != nil {
		return 0, err
	}
	_ = s.transactions.CreateTransaction(ctx, model.WalletTransaction{
		ID:              uuid.New(),
		UserID:          userID,
		TransactionType: model.TxFaucetClaim,
		Amount:          s.cfg.FaucetAmount,
		TransactionHash: "0x" + hash,
		Status:          model.TxConfirmed,
		CreatedAt:       now,
	})
	_ = s.activity.Insert(ctx, model.ActivityLog{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: model.ActivityFaucet,
		Title:        "Claimed faucet tokens",
		Metadata:     map[string]any{"amount": s.cfg.FaucetAmount},
		CreatedAt:    now,
	})

	return balance, nil
}

func (s *walletService) StartPurchase(ctx context.Context, userID uuid.UUID, amount int64) (*PurchaseStart, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	authority, payURL, err := s.gateway.RequestPayment(ctx, amount, "IRT", "BDAG token purchase", s.gateway.CallbackURL())
	if err != nil {
		return nil, fmt.Errorf("request payment: %w", err)
	}

	order := model.PurchaseOrder{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Authority: authority,
		Status:    model.PurchasePending,
		CreatedAt: s.now(),
	}
	if err := s.transactions.CreatePurchase(ctx, order); err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	return &PurchaseStart{Order: order, PayURL: payURL}, nil
}

// CompletePurchase handles the gateway callback. ok mirrors the gateway's
// Status query parameter; a cancelled payment settles the order as failed
// without contacting the gateway again.
func (s *walletService) CompletePurchase(ctx context.Context, authority string, ok bool) (*model.PurchaseOrder, error) {
	order, err := s.transactions.GetPurchaseByAuthority(ctx, authority)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	if order.Status != model.PurchasePending {
		return nil, ErrPurchaseSettled
	}

	now := s.now()

	if !ok {
		if err := s.transactions.SettlePurchase(ctx, order.ID, model.PurchaseFailed, 0, now); err != nil {
			return nil, err
		}
		order.Status = model.PurchaseFailed
		order.VerifiedAt = &now
		return &order, ErrPaymentIncomplete
	}

	refID, _, _, err := s.gateway.VerifyPayment(ctx, authority, order.Amount)
	if err != nil {
		if serr := s.transactions.SettlePurchase(ctx, order.ID, model.PurchaseFailed, 0, now); serr != nil {
			return nil, serr
		}
		order.Status = model.PurchaseFailed
		order.VerifiedAt = &now
		return &order, ErrPaymentIncomplete
	}

	// Settle first: replayed callbacks hit the pending guard, not the credit.
	if err := s.transactions.SettlePurchase(ctx, order.ID, model.PurchasePaid, refID, now); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrPurchaseSettled
		}
		return nil, err
	}

	if _, err := s.balances.AdjustBalance(ctx, order.UserID, order.Amount); err != nil {
		return nil, fmt.Errorf("credit purchase: %w", err)
	}

	_ = s.transactions.CreateTransaction(ctx, model.WalletTransaction{
		ID:              uuid.New(),
		UserID:          order.UserID,
		TransactionType: model.TxPurchase,
		Amount:          order.Amount,
		TransactionHash: fmt.Sprintf("ref:%d", refID),
		Status:          model.TxConfirmed,
		CreatedAt:       now,
	})

	order.Status = model.PurchasePaid
	order.RefID = refID
	order.VerifiedAt = &now

	s.pub.Publish(events.PurchaseSettled(order.UserID), order.ID)
	return &order, nil
}
