package events

import "github.com/google/uuid"

// Subject layout: medvault.<domain>.<event>.<entity-id>. The payload is the
// ID of the row the event is about; workers reload state from Postgres so a
// stale message can never overwrite fresher data.

const prefix = "medvault."

const (
	// wildcard patterns the workers subscribe with
	SubAccessRequestCreated = prefix + "consent.request.created.*"
	SubGrantPending         = prefix + "consent.grant.pending.*"
	SubGrantApproved        = prefix + "consent.grant.approved.*"
	SubGrantDenied          = prefix + "consent.grant.denied.*"
	SubGrantRevoked         = prefix + "consent.grant.revoked.*"
	SubAppointmentCreated   = prefix + "appointment.created.*"
	SubBillPaid             = prefix + "bill.paid.*"
	SubDonationCreated      = prefix + "donation.created.*"
	SubPurchaseSettled      = prefix + "purchase.settled.*"
)

func AccessRequestCreated(patientID uuid.UUID) string {
	return prefix + "consent.request.created." + patientID.String()
}

func GrantPending(patientID uuid.UUID) string {
	return prefix + "consent.grant.pending." + patientID.String()
}

func GrantApproved(patientID uuid.UUID) string {
	return prefix + "consent.grant.approved." + patientID.String()
}

func GrantDenied(patientID uuid.UUID) string {
	return prefix + "consent.grant.denied." + patientID.String()
}

func GrantRevoked(patientID uuid.UUID) string {
	return prefix + "consent.grant.revoked." + patientID.String()
}

func AppointmentCreated(userID uuid.UUID) string {
	return prefix + "appointment.created." + userID.String()
}

func BillPaid(userID uuid.UUID) string {
	return prefix + "bill.paid." + userID.String()
}

func DonationCreated(campaignID uuid.UUID) string {
	return prefix + "donation.created." + campaignID.String()
}

func PurchaseSettled(userID uuid.UUID) string {
	return prefix + "purchase.settled." + userID.String()
}
