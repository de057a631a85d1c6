package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/medvault/medvault_backend/config"
	"github.com/medvault/medvault_backend/internal/api/http/handler"
	"github.com/medvault/medvault_backend/internal/api/http/middleware"
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
	"github.com/medvault/medvault_backend/internal/service/wallet"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	AuthSvc         auth.Service
	ProfileSvc      profile.Service
	RecordSvc       record.Service
	AppointmentSvc  appointment.Service
	BillSvc         bill.Service
	DonationSvc     donation.Service
	WalletSvc       wallet.Service
	ConsentSvc      consent.Service
	ActivitySvc     activity.Service
	NotificationSvc notification.Service
	EmergencySvc    emergency.Service
	InsuranceSvc    insurance.Service
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	profileH := handler.NewProfileHandler(r.p.ProfileSvc)
	recordH := handler.NewRecordHandler(r.p.RecordSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	billH := handler.NewBillHandler(r.p.BillSvc)
	donationH := handler.NewDonationHandler(r.p.DonationSvc)
	walletH := handler.NewWalletHandler(r.p.WalletSvc)
	consentH := handler.NewConsentHandler(r.p.ConsentSvc)
	activityH := handler.NewActivityHandler(r.p.ActivitySvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	emergencyH := handler.NewEmergencyHandler(r.p.EmergencySvc)
	insuranceH := handler.NewInsuranceHandler(r.p.InsuranceSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerProfileRoutes(api, profileH, authRequired)
	r.registerRecordRoutes(api, recordH, authRequired)
	r.registerAppointmentRoutes(api, appointmentH, authRequired)
	r.registerBillRoutes(api, billH, authRequired)
	r.registerDonationRoutes(api, donationH, authRequired)
	r.registerWalletRoutes(api, walletH, authRequired)
	r.registerConsentRoutes(api, consentH, authRequired)
	r.registerInboxRoutes(api, activityH, notificationH, authRequired)
	r.registerEmergencyRoutes(api, emergencyH, authRequired)
	r.registerInsuranceRoutes(api, insuranceH, authRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
