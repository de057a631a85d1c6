package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/medvault/medvault_backend/config"
	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/database"
	"github.com/medvault/medvault_backend/pkg/util/password"
	"github.com/medvault/medvault_backend/pkg/wallet"
)

// NewSeedCommand loads demo data: the hospital directory plus one demo
// patient with records, bills, and a campaign. Re-running adds duplicate
// hospital rows, so it is meant for fresh databases.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo data (hospitals, demo patient, records, bills, campaign)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			db, err := database.NewFromCentral(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			store := postgres.NewManager(db.Conn())
			now := time.Now()

			hospitalIDs := make([]uuid.UUID, 0, len(seedHospitals))
			for _, h := range seedHospitals {
				h.ID = uuid.New()
				h.CreatedAt = now
				if err := store.Hospitals.Create(ctx, h); err != nil {
					return fmt.Errorf("failed to seed hospital %q: %w", h.Name, err)
				}
				hospitalIDs = append(hospitalIDs, h.ID)
			}
			fmt.Printf("Seeded %d hospitals.\n", len(seedHospitals))

			if err := seedDemoPatient(ctx, store, hospitalIDs, now); err != nil {
				return err
			}
			fmt.Println("Seeded demo patient demo@medvault.example (password: demo-password).")
			return nil
		},
	}

	return cmd
}

func seedDemoPatient(ctx context.Context, store *postgres.Manager, hospitalIDs []uuid.UUID, now time.Time) error {
	hash, err := password.Hash("demo-password")
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	userID := uuid.New()
	if err := store.Users.Create(ctx, model.User{
		ID:           userID,
		Email:        "demo@medvault.example",
		PasswordHash: hash,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	if err := store.Profiles.Create(ctx, model.Profile{
		UserID:        userID,
		FullName:      "Demo Patient",
		WalletAddress: wallet.DeriveAddress("demo@medvault.example"),
		BDAGBalance:   500,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return fmt.Errorf("failed to seed demo profile: %w", err)
	}

	records := []model.MedicalRecord{
		{RecordType: model.RecordTypeLabResult, Title: "Complete blood count", Description: "Routine panel, all values in range."},
		{RecordType: model.RecordTypePrescription, Title: "Metformin 500mg", Description: "Twice daily with meals."},
		{RecordType: model.RecordTypeVaccination, Title: "Influenza vaccine", Description: "Seasonal dose."},
	}
	for i, rec := range records {
		rec.ID = uuid.New()
		rec.UserID = userID
		if len(hospitalIDs) > 0 {
			hid := hospitalIDs[i%len(hospitalIDs)]
			rec.HospitalID = &hid
		}
		rec.CreatedAt = now
		if err := store.Records.Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to seed record %q: %w", rec.Title, err)
		}
	}

	bill := model.MedicalBill{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      120,
		Category:    "consultation",
		Description: "Cardiology consultation",
		Status:      model.BillPending,
		CreatedAt:   now,
	}
	if len(hospitalIDs) > 0 {
		bill.HospitalID = &hospitalIDs[0]
	}
	if err := store.Bills.Create(ctx, bill); err != nil {
		return fmt.Errorf("failed to seed bill: %w", err)
	}

	policy := model.InsurancePolicy{
		ID:             uuid.New(),
		UserID:         userID,
		PolicyNumber:   "BDAG-DEMO0001",
		Provider:       "BlockDAG Health Insurance",
		PlanType:       "Premium",
		CoverageAmount: 500000,
		PremiumAmount:  450,
		StartDate:      now,
		EndDate:        now.AddDate(1, 0, 0),
		Status:         model.PolicyActive,
		CoverageDetails: map[string]string{
			"hospitalization": "100% coverage",
			"outpatient":      "80% coverage",
			"emergency":       "100% coverage",
			"prescription":    "70% coverage",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Insurance.CreatePolicy(ctx, policy); err != nil {
		return fmt.Errorf("failed to seed insurance policy: %w", err)
	}

	claim := model.InsuranceClaim{
		ID:          uuid.New(),
		UserID:      userID,
		PolicyID:    policy.ID,
		ClaimNumber: "CLM-DEMO0001",
		ClaimType:   "outpatient",
		Amount:      80,
		Description: "Consultation reimbursement",
		Status:      model.ClaimPending,
		SubmittedAt: now,
		CreatedAt:   now,
	}
	if len(hospitalIDs) > 0 {
		claim.HospitalID = &hospitalIDs[0]
	}
	if err := store.Insurance.CreateClaim(ctx, claim); err != nil {
		return fmt.Errorf("failed to seed insurance claim: %w", err)
	}

	start := now
	campaign := model.DonationCampaign{
		ID:              uuid.New(),
		PatientID:       userID,
		Title:           "Help cover cardiac surgery costs",
		Description:     "Raising tokens toward a scheduled procedure.",
		IllnessCategory: "cardiology",
		PatientStory:    "Scheduled for surgery next quarter; every token helps.",
		PatientAge:      42,
		TargetAmount:    5000,
		UrgencyLevel:    model.UrgencyHigh,
		Status:          model.CampaignActive,
		StartDate:       &start,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(hospitalIDs) > 0 {
		campaign.HospitalID = hospitalIDs[0]
	}
	return store.Campaigns.Create(ctx, campaign)
}

var seedHospitals = []model.Hospital{
	{
		Name:        "City General Hospital",
		City:        "Tehran",
		Location:    "12 Valiasr Ave",
		Rating:      4.6,
		Specialties: []string{"cardiology", "oncology", "emergency"},
	},
	{
		Name:        "Pars Specialized Clinic",
		City:        "Tehran",
		Location:    "45 Enghelab St",
		Rating:      4.3,
		Specialties: []string{"dermatology", "orthopedics"},
	},
	{
		Name:        "Shiraz Central Medical Center",
		City:        "Shiraz",
		Location:    "8 Zand Blvd",
		Rating:      4.5,
		Specialties: []string{"neurology", "pediatrics", "radiology"},
	},
	{
		Name:        "Isfahan Heart Institute",
		City:        "Isfahan",
		Location:    "3 Chaharbagh Ave",
		Rating:      4.8,
		Specialties: []string{"cardiology", "cardiac surgery"},
	},
	{
		Name:        "Tabriz University Hospital",
		City:        "Tabriz",
		Location:    "21 Azadi Blvd",
		Rating:      4.1,
		Specialties: []string{"general medicine", "oncology", "nephrology"},
	},
}
