package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

// View types are the JSON shapes the API returns. They exist so model types
// can evolve without silently changing the wire format.

type userView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u model.User) userView {
	return userView{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type profileView struct {
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newProfileView(p model.Profile) profileView {
	return profileView{
		UserID:        p.UserID,
		FullName:      p.FullName,
		WalletAddress: p.WalletAddress,
		Balance:       p.BDAGBalance,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type recordView struct {
	ID            uuid.UUID  `json:"id"`
	HospitalID    *uuid.UUID `json:"hospital_id,omitempty"`
	RecordType    string     `json:"record_type"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	HasAttachment bool       `json:"has_attachment"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newRecordView(r model.MedicalRecord) recordView {
	return recordView{
		ID:            r.ID,
		HospitalID:    r.HospitalID,
		RecordType:    string(r.RecordType),
		Title:         r.Title,
		Description:   r.Description,
		HasAttachment: r.FileKey != "",
		CreatedAt:     r.CreatedAt,
	}
}

func newRecordViews(rs []model.MedicalRecord) []recordView {
	out := make([]recordView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newRecordView(r))
	}
	return out
}

type hospitalView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Location    string    `json:"location"`
	Rating      float64   `json:"rating"`
	Specialties []string  `json:"specialties,omitempty"`
}

func newHospitalViews(hs []model.Hospital) []hospitalView {
	out := make([]hospitalView, 0, len(hs))
	for _, h := range hs {
		out = append(out, hospitalView{
			ID:          h.ID,
			Name:        h.Name,
			City:        h.City,
			Location:    h.Location,
			Rating:      h.Rating,
			Specialties: h.Specialties,
		})
	}
	return out
}

type appointmentView struct {
	ID         uuid.UUID `json:"id"`
	HospitalID uuid.UUID `json:"hospital_id"`
	Date       time.Time `json:"date"`
	Reason     string    `json:"reason,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAppointmentView(a model.Appointment) appointmentView {
	return appointmentView{
		ID:         a.ID,
		HospitalID: a.HospitalID,
		Date:       a.AppointmentDate,
		Reason:     a.Reason,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}
}

func newAppointmentViews(as []model.Appointment) []appointmentView {
	out := make([]appointmentView, 0, len(as))
	for _, a := range as {
		out = append(out, newAppointmentView(a))
	}
	return out
}

type billView struct {
	ID              uuid.UUID  `json:"id"`
	HospitalID      *uuid.UUID `json:"hospital_id,omitempty"`
	Amount          int64      `json:"amount"`
	Category        string     `json:"category,omitempty"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	TransactionHash string     `json:"transaction_hash,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newBillView(b model.MedicalBill) billView {
	return billView{
		ID:              b.ID,
		HospitalID:      b.HospitalID,
		Amount:          b.Amount,
		Category:        b.Category,
		Description:     b.Description,
		Status:          string(b.Status),
		TransactionHash: b.TransactionHash,
		PaidAt:          b.PaidAt,
		CreatedAt:       b.CreatedAt,
	}
}

func newBillViews(bs []model.MedicalBill) []billView {
	out := make([]billView, 0, len(bs))
	for _, b := range bs {
		out = append(out, newBillView(b))
	}
	return out
}

type campaignView struct {
	ID              uuid.UUID  `json:"id"`
	HospitalID      uuid.UUID  `json:"hospital_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	IllnessCategory string     `json:"illness_category,omitempty"`
	PatientStory    string     `json:"patient_story,omitempty"`
	PatientAge      int        `json:"patient_age,omitempty"`
	TargetAmount    int64      `json:"target_amount"`
	RaisedAmount    int64      `json:"raised_amount"`
	UrgencyLevel    string     `json:"urgency_level"`
	Status          string     `json:"status"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newCampaignView(c model.DonationCampaign) campaignView {
	return campaignView{
		ID:              c.ID,
		HospitalID:      c.HospitalID,
		Title:           c.Title,
		Description:     c.Description,
		IllnessCategory: c.IllnessCategory,
		PatientStory:    c.PatientStory,
		PatientAge:      c.PatientAge,
		TargetAmount:    c.TargetAmount,
		RaisedAmount:    c.RaisedAmount,
		UrgencyLevel:    string(c.UrgencyLevel),
		Status:          string(c.Status),
		EndDate:         c.EndDate,
		CreatedAt:       c.CreatedAt,
	}
}

func newCampaignViews(cs []model.DonationCampaign) []campaignView {
	out := make([]campaignView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCampaignView(c))
	}
	return out
}

type donationView struct {
	ID              uuid.UUID `json:"id"`
	CampaignID      uuid.UUID `json:"campaign_id"`
	DonorWallet     string    `json:"donor_wallet,omitempty"`
	Amount          int64     `json:"amount"`
	Message         string    `json:"message,omitempty"`
	IsAnonymous     bool      `json:"is_anonymous"`
	TransactionHash string    `json:"transaction_hash"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func newDonationView(d model.Donation) donationView {
	v := donationView{
		ID:              d.ID,
		CampaignID:      d.CampaignID,
		Amount:          d.Amount,
		Message:         d.Message,
		IsAnonymous:     d.IsAnonymous,
		TransactionHash: d.TransactionHash,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
	}
	if !d.IsAnonymous {
		v.DonorWallet = d.DonorWalletAddress
	}
	return v
}

func newDonationViews(ds []model.Donation) []donationView {
	out := make([]donationView, 0, len(ds))
	for _, d := range ds {
		out = append(out, newDonationView(d))
	}
	return out
}

type transactionView struct {
	ID               uuid.UUID `json:"id"`
	Type             string    `json:"type"`
	Amount           int64     `json:"amount"`
	RecipientAddress string    `json:"recipient_address,omitempty"`
	TransactionHash  string    `json:"transaction_hash,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

func newTransactionViews(ts []model.WalletTransaction) []transactionView {
	out := make([]transactionView, 0, len(ts))
	for _, t := range ts {
		out = append(out, transactionView{
			ID:               t.ID,
			Type:             string(t.TransactionType),
			Amount:           t.Amount,
			RecipientAddress: t.RecipientAddress,
			TransactionHash:  t.TransactionHash,
			Status:           string(t.Status),
			CreatedAt:        t.CreatedAt,
		})
	}
	return out
}

type purchaseView struct {
	ID         uuid.UUID  `json:"id"`
	Amount     int64      `json:"amount"`
	Authority  string     `json:"authority"`
	RefID      int64      `json:"ref_id,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

func newPurchaseView(p model.PurchaseOrder) purchaseView {
	return purchaseView{
		ID:         p.ID,
		Amount:     p.Amount,
		Authority:  p.Authority,
		RefID:      p.RefID,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
		VerifiedAt: p.VerifiedAt,
	}
}

type accessRequestView struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	RequesterWallet string     `json:"requester_wallet"`
	RequesterName   string     `json:"requester_name,omitempty"`
	ResourceType    string     `json:"resource_type"`
	Reason          string     `json:"reason,omitempty"`
	Status          string     `json:"status"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newAccessRequestView(r model.AccessRequest) accessRequestView {
	return accessRequestView{
		ID:              r.ID,
		PatientID:       r.PatientID,
		RequesterWallet: r.RequesterWalletAddress,
		RequesterName:   r.RequesterName,
		ResourceType:    string(r.ResourceType),
		Reason:          r.Reason,
		Status:          string(r.Status),
		RespondedAt:     r.RespondedAt,
		ExpiresAt:       r.ExpiresAt,
		CreatedAt:       r.CreatedAt,
	}
}

func newAccessRequestViews(rs []model.AccessRequest) []accessRequestView {
	out := make([]accessRequestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newAccessRequestView(r))
	}
	return out
}

type accessGrantView struct {
	ID              uuid.UUID   `json:"id"`
	PatientID       uuid.UUID   `json:"patient_id"`
	RecipientWallet string      `json:"recipient_wallet"`
	RecipientName   string      `json:"recipient_name,omitempty"`
	ResourceType    string      `json:"resource_type"`
	ResourceIDs     []uuid.UUID `json:"resource_ids,omitempty"`
	EncryptionKey   string      `json:"encryption_key,omitempty"`
	Status          string      `json:"status"`
	RevokedAt       *time.Time  `json:"revoked_at,omitempty"`
	ExpiresAt       time.Time   `json:"expires_at"`
	AccessCount     int         `json:"access_count"`
	LastAccessedAt  *time.Time  `json:"last_accessed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

func newAccessGrantView(g model.AccessGrant) accessGrantView {
	return accessGrantView{
		ID:              g.ID,
		PatientID:       g.PatientID,
		RecipientWallet: g.RecipientWalletAddress,
		RecipientName:   g.RecipientName,
		ResourceType:    string(g.ResourceType),
		ResourceIDs:     g.ResourceIDs,
		EncryptionKey:   g.SharedEncryptionKey,
		Status:          string(g.Status),
		RevokedAt:       g.RevokedAt,
		ExpiresAt:       g.ExpiresAt,
		AccessCount:     g.AccessCount,
		LastAccessedAt:  g.LastAccessedAt,
		CreatedAt:       g.CreatedAt,
	}
}

func newAccessGrantViews(gs []model.AccessGrant) []accessGrantView {
	out := make([]accessGrantView, 0, len(gs))
	for _, g := range gs {
		out = append(out, newAccessGrantView(g))
	}
	return out
}

type activityView struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func newActivityViews(as []model.ActivityLog) []activityView {
	out := make([]activityView, 0, len(as))
	for _, a := range as {
		out = append(out, activityView{
			ID:          a.ID,
			Type:        string(a.ActivityType),
			Title:       a.Title,
			Description: a.Description,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
		})
	}
	return out
}

type notificationView struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotificationViews(ns []model.Notification) []notificationView {
	out := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationView{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

type emergencyCardView struct {
	ID                uuid.UUID                `json:"id"`
	BloodType         string                   `json:"blood_type,omitempty"`
	Allergies         []string                 `json:"allergies,omitempty"`
	MedicalConditions []string                 `json:"medical_conditions,omitempty"`
	Contacts          []model.EmergencyContact `json:"contacts,omitempty"`
	Code              string                   `json:"code"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func newEmergencyCardView(c model.EmergencyCard) emergencyCardView {
	return emergencyCardView{
		ID:                c.ID,
		BloodType:         c.BloodType,
		Allergies:         c.Allergies,
		MedicalConditions: c.MedicalConditions,
		Contacts:          c.Contacts,
		Code:              c.QRCode,
		UpdatedAt:         c.UpdatedAt,
	}
}

type policyView struct {
	ID              uuid.UUID         `json:"id"`
	PolicyNumber    string            `json:"policy_number"`
	Provider        string            `json:"provider"`
	PlanType        string            `json:"plan_type"`
	CoverageAmount  int64             `json:"coverage_amount"`
	PremiumAmount   int64             `json:"premium_amount"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         time.Time         `json:"end_date"`
	Status          string            `json:"status"`
	CoverageDetails map[string]string `json:"coverage_details,omitempty"`
}

func newPolicyViews(ps []model.InsurancePolicy) []policyView {
	out := make([]policyView, 0, len(ps))
	for _, p := range ps {
		out = append(out, policyView{
			ID:              p.ID,
			PolicyNumber:    p.PolicyNumber,
			Provider:        p.Provider,
			PlanType:        p.PlanType,
			CoverageAmount:  p.CoverageAmount,
			PremiumAmount:   p.PremiumAmount,
			StartDate:       p.StartDate,
			EndDate:         p.EndDate,
			Status:          string(p.Status),
			CoverageDetails: p.CoverageDetails,
		})
	}
	return out
}

type claimView struct {
	ID          uuid.UUID  `json:"id"`
	PolicyID    uuid.UUID  `json:"policy_id"`
	HospitalID  *uuid.UUID `json:"hospital_id,omitempty"`
	ClaimNumber string     `json:"claim_number"`
	ClaimType   string     `json:"claim_type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func newClaimViews(cs []model.InsuranceClaim) []claimView {
	out := make([]claimView, 0, len(cs))
	for _, c := range cs {
		out = append(out, claimView{
			ID:          c.ID,
			PolicyID:    c.PolicyID,
			HospitalID:  c.HospitalID,
			ClaimNumber: c.ClaimNumber,
			ClaimType:   c.ClaimType,
			Amount:      c.Amount,
			Description: c.Description,
			Status:      string(c.Status),
			SubmittedAt: c.SubmittedAt,
			ProcessedAt: c.ProcessedAt,
		})
	}
	return out
}
