package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/medvault/medvault_backend/config"
	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/email"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Hub    *events.Hub
	Store  *postgres.Manager
	Mailer *email.Client
	Cfg    *config.Config
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startNotificationWorker(p.Hub, p.Store)
			startDonationWorker(p.Hub, p.Store)
			startEmailWorker(p.Hub, p.Store, p.Mailer, p.Cfg)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Unsubscribe and drain handled by the hub's own stop hook.
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// notification_worker
// ---------------------------------------------------------------------------

// startNotificationWorker turns domain events into inbox rows. Workers reload
// state from Postgres, so a replayed or stale message cannot write stale data.
func startNotificationWorker(hub *events.Hub, store *postgres.Manager) {
	ctx := context.Background()

	notify := func(userID uuid.UUID, kind model.NotificationKind, title, body string) {
		err := store.Notifications.Insert(ctx, model.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			CreatedAt: time.Now(),
		})
		if err != nil {
			slog.Warn("notification_worker: insert failed", "user_id", userID, "err", err)
		}
	}

	subscribe(hub, events.SubAccessRequestCreated, func(patientID, requestID uuid.UUID) {
		req, err := store.Requests.GetByID(ctx, requestID)
		if err != nil {
			slog.Warn("notification_worker: request not found", "id", requestID, "err", err)
			return
		}
		who := req.RequesterName
		if who == "" {
			who = req.RequesterWalletAddress
		}
		notify(patientID, model.NotifyAccessRequested, "New access request",
			fmt.Sprintf("%s asked to see your %s", who, req.ResourceType))
	})

	subscribe(hub, events.SubGrantPending, func(patientID, grantID uuid.UUID) {
		g, err := store.Grants.GetByID(ctx, grantID)
		if err != nil {
			slog.Warn("notification_worker: grant not found", "id", grantID, "err", err)
			return
		}
		who := g.RecipientName
		if who == "" {
			who = g.RecipientWalletAddress
		}
		notify(patientID, model.NotifyGrantPending, "QR code scanned",
			fmt.Sprintf("%s scanned your QR code and awaits your approval", who))
	})

	subscribe(hub, events.SubGrantApproved, func(patientID, grantID uuid.UUID) {
		notify(patientID, model.NotifyGrantApproved, "Access granted",
			"Your signature was recorded and the grant is now active")
	})

	subscribe(hub, events.SubGrantDenied, func(patientID, grantID uuid.UUID) {
		notify(patientID, model.NotifyGrantDenied, "Access denied",
			"The request was denied and no data was shared")
	})

	subscribe(hub, events.SubGrantRevoked, func(patientID, grantID uuid.UUID) {
		notify(patientID, model.NotifyGrantRevoked, "Access revoked",
			"The grant no longer authorizes any access")
	})

	subscribe(hub, events.SubAppointmentCreated, func(userID, apptID uuid.UUID) {
		a, err := store.Appointments.GetByID(ctx, apptID)
		if err != nil {
			slog.Warn("notification_worker: appointment not found", "id", apptID, "err", err)
			return
		}
		notify(userID, model.NotifyAppointment, "Appointment booked",
			a.AppointmentDate.Format("Monday, Jan 2 2006 at 15:04"))
	})

	subscribe(hub, events.SubBillPaid, func(userID, billID uuid.UUID) {
		b, err := store.Bills.GetByID(ctx, billID)
		if err != nil {
			slog.Warn("notification_worker: bill not found", "id", billID, "err", err)
			return
		}
		notify(userID, model.NotifyBill, "Bill paid",
			fmt.Sprintf("%d tokens were debited for %s", b.Amount, b.Description))
	})

	subscribe(hub, events.SubPurchaseSettled, func(userID, orderID uuid.UUID) {
		o, err := store.Wallet.GetPurchaseByID(ctx, orderID)
		if err != nil {
			slog.Warn("notification_worker: purchase order not found", "id", orderID, "err", err)
			return
		}
		if o.Status != model.PurchasePaid {
			return
		}
		notify(userID, model.NotifyWallet, "Purchase complete",
			fmt.Sprintf("%d tokens were credited to your wallet", o.Amount))
	})

	slog.Info("notification_worker: started")
}

// ---------------------------------------------------------------------------
// donation_worker
// ---------------------------------------------------------------------------

// startDonationWorker settles pending donations: confirm the row, bump the
// campaign's raised amount, and credit the patient. Confirm is pending-guarded
// in SQL, so replayed events settle at most once.
func startDonationWorker(hub *events.Hub, store *postgres.Manager) {
	ctx := context.Background()

	subscribe(hub, events.SubDonationCreated, func(campaignID, donationID uuid.UUID) {
		d, err := store.Donations.GetByID(ctx, donationID)
		if err != nil {
			slog.Warn("donation_worker: donation not found", "id", donationID, "err", err)
			return
		}
		if d.Status != model.DonationPending {
			return
		}

		now := time.Now()
		if err := store.Donations.Confirm(ctx, donationID, now); err != nil {
			// Lost the race with another worker; nothing left to do.
			return
		}

		if err := store.Campaigns.AddRaised(ctx, d.CampaignID, d.Amount); err != nil {
			slog.Error("donation_worker: add raised failed", "campaign_id", d.CampaignID, "err", err)
			return
		}

		camp, err := store.Campaigns.GetByID(ctx, d.CampaignID)
		if err != nil {
			slog.Error("donation_worker: campaign not found", "id", d.CampaignID, "err", err)
			return
		}

		if _, err := store.Profiles.AdjustBalance(ctx, camp.PatientID, d.Amount); err != nil {
			slog.Error("donation_worker: credit patient failed", "patient_id", camp.PatientID, "err", err)
			return
		}

		err = store.Wallet.CreateTransaction(ctx, model.WalletTransaction{
			ID:               uuid.New(),
			UserID:           camp.PatientID,
			TransactionType:  model.TxDonation,
			Amount:           d.Amount,
			RecipientAddress: d.RecipientWalletAddress,
			TransactionHash:  d.TransactionHash,
			Status:           model.TxConfirmed,
			CreatedAt:        now,
		})
		if err != nil {
			slog.Warn("donation_worker: create transaction failed", "err", err)
		}

		err = store.Notifications.Insert(ctx, model.Notification{
			ID:        uuid.New(),
			UserID:    camp.PatientID,
			Kind:      model.NotifyDonation,
			Title:     "Donation received",
			Body:      fmt.Sprintf("%d tokens were donated to %s", d.Amount, camp.Title),
			CreatedAt: now,
		})
		if err != nil {
			slog.Warn("donation_worker: insert notification failed", "err", err)
		}
	})

	slog.Info("donation_worker: started")
}

// ---------------------------------------------------------------------------
// email_worker
// ---------------------------------------------------------------------------

func startEmailWorker(hub *events.Hub, store *postgres.Manager, mailer *email.Client, cfg *config.Config) {
	if mailer == nil {
		return
	}
	ctx := context.Background()

	subscribe(hub, events.SubAccessRequestCreated, func(patientID, requestID uuid.UUID) {
		req, err := store.Requests.GetByID(ctx, requestID)
		if err != nil {
			return
		}
		u, err := store.Users.GetByID(ctx, patientID)
		if err != nil {
			slog.Warn("email_worker: user not found", "id", patientID, "err", err)
			return
		}
		name := ""
		if p, err := store.Profiles.GetByUserID(ctx, patientID); err == nil {
			name = p.FullName
		}

		who := req.RequesterName
		if who == "" {
			who = req.RequesterWalletAddress
		}
		msg := email.BuildAccessRequestEmail(email.AccessRequestEmailData{
			PatientName:  name,
			Email:        u.Email,
			ProviderName: who,
			Purpose:      req.Reason,
			DashboardURL: cfg.Server.Domain + "/consent/requests",
		})
		if err := mailer.Send(ctx, msg); err != nil {
			slog.Warn("email_worker: access request email failed", "request_id", requestID, "err", err)
		}
	})

	slog.Info("email_worker: started")
}

func subscribe(hub *events.Hub, pattern string, fn events.Handler) {
	if err := hub.Subscribe(pattern, fn); err != nil {
		slog.Error("workers: subscribe failed", "pattern", pattern, "err", err)
	}
}
