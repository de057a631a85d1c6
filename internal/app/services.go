package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/medvault/medvault_backend/config"
	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/service/activity"
	"github.com/medvault/medvault_backend/internal/service/appointment"
	"github.com/medvault/medvault_backend/internal/service/auth"
	"github.com/medvault/medvault_backend/internal/service/bill"
	"github.com/medvault/medvault_backend/internal/service/consent"
	"github.com/medvault/medvault_backend/internal/service/donation"
	"github.com/medvault/medvault_backend/internal/service/emergency"
	"github.com/medvault/medvault_backend/internal/service/insurance"
	"github.com/medvault/medvault_backend/internal/service/notification"
	"github.com/medvault/medvault_backend/internal/service/profile"
	"github.com/medvault/medvault_backend/internal/service/record"
	svcwallet "github.com/medvault/medvault_backend/internal/service/wallet"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/database"
	"github.com/medvault/medvault_backend/pkg/email"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
	"github.com/medvault/medvault_backend/pkg/paygate"
	"github.com/medvault/medvault_backend/pkg/s3"
	"github.com/medvault/medvault_backend/pkg/util/password"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideStorage,
		ProvidePasetoManager,
		ProvideAuthService,
		ProvideProfileService,
		ProvideRecordService,
		ProvideAppointmentService,
		ProvideBillService,
		ProvideDonationService,
		ProvideWalletService,
		ProvideConsentService,
		ProvideActivityService,
		ProvideNotificationService,
		ProvideEmergencyService,
		ProvideInsuranceService,
	),
)

func ProvideStorage(db *database.DB) *postgres.Manager {
	return postgres.NewManager(db.Conn())
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideAuthService(store *postgres.Manager, rdb *redis.Client, paseto *pasetotoken.Manager, cfg *config.Config) auth.Service {
	return auth.New(auth.Config{
		SessionTTL: time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute,
		Hasher:     password.FromCentralConfig(cfg.Password).ToParams(),
	}, auth.Deps{
		Users:    store.Users,
		Profiles: store.Profiles,
		Sessions: auth.NewRedisSessions(rdb),
		Tokens:   paseto,
	})
}

func ProvideProfileService(store *postgres.Manager) profile.Service {
	return profile.New(store.Profiles)
}

func ProvideRecordService(store *postgres.Manager, s3Client *s3.Client) record.Service {
	return record.New(record.Deps{
		Records:  store.Records,
		Store:    s3Client,
		Activity: store.Activity,
	})
}

func ProvideAppointmentService(store *postgres.Manager, mailer *email.Client, hub *events.Hub) appointment.Service {
	return appointment.New(appointment.Deps{
		Appointments: store.Appointments,
		Hospitals:    store.Hospitals,
		Users:        store.Users,
		Profiles:     store.Profiles,
		Activity:     store.Activity,
		Mailer:       mailer,
		Publisher:    hub,
	})
}

func ProvideBillService(store *postgres.Manager, hub *events.Hub) bill.Service {
	return bill.New(bill.Deps{
		Bills:        store.Bills,
		Balances:     store.Profiles,
		Transactions: store.Wallet,
		Activity:     store.Activity,
		Publisher:    hub,
	})
}

func ProvideDonationService(store *postgres.Manager, hub *events.Hub) donation.Service {
	return donation.New(donation.Deps{
		Campaigns:    store.Campaigns,
		Donations:    store.Donations,
		Profiles:     store.Profiles,
		Transactions: store.Wallet,
		Activity:     store.Activity,
		Publisher:    hub,
	})
}

func ProvideWalletService(store *postgres.Manager, rdb *redis.Client, gateway *paygate.Client, hub *events.Hub, cfg *config.Config) svcwallet.Service {
	return svcwallet.New(svcwallet.Config{
		FaucetAmount:   cfg.Faucet.Amount,
		FaucetCooldown: time.Duration(cfg.Faucet.CooldownHours) * time.Hour,
	}, svcwallet.Deps{
		Transactions: store.Wallet,
		Balances:     store.Profiles,
		Activity:     store.Activity,
		Cooldowns:    svcwallet.NewRedisCooldowns(rdb),
		Gateway:      gateway,
		Publisher:    hub,
	})
}

func ProvideConsentService(store *postgres.Manager, hub *events.Hub, cfg *config.Config) consent.Service {
	return consent.New(consent.Config{
		RequestTTL: time.Duration(cfg.Consent.RequestTTLDays) * 24 * time.Hour,
		GrantTTL:   time.Duration(cfg.Consent.GrantTTLDays) * 24 * time.Hour,
		QRTTL:      time.Duration(cfg.Consent.QRTTLHours) * time.Hour,
	}, consent.Deps{
		Requests:     store.Requests,
		Grants:       store.Grants,
		Profiles:     store.Profiles,
		Records:      store.Records,
		Bills:        store.Bills,
		Appointments: store.Appointments,
		Activity:     store.Activity,
		Verifier:     wallet.NewFormatVerifier(),
		Publisher:    hub,
	})
}

func ProvideActivityService(store *postgres.Manager) activity.Service {
	return activity.New(store.Activity)
}

func ProvideNotificationService(store *postgres.Manager) notification.Service {
	return notification.New(store.Notifications)
}

func ProvideInsuranceService(store *postgres.Manager) insurance.Service {
	return insurance.New(store.Insurance)
}

func ProvideEmergencyService(store *postgres.Manager, cfg *config.Config) emergency.Service {
	return emergency.New(emergency.Config{
		BaseURL: cfg.Server.Domain + "/emergency/",
	}, store.Emergency)
}
