// Package postgres implements the repositories behind every service, all
// sharing one database/sql pool opened through the pgx stdlib driver.
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist. Services translate it
// into their own sentinels.
var ErrNotFound = errors.New("postgres: not found")

// Manager bundles every repository over a shared pool.
type Manager struct {
	Users         *UsersRepo
	Profiles      *ProfilesRepo
	Hospitals     *HospitalsRepo
	Records       *RecordsRepo
	Appointments  *AppointmentsRepo
	Bills         *BillsRepo
	Campaigns     *CampaignsRepo
	Donations     *DonationsRepo
	Wallet        *WalletRepo
	Requests      *AccessRequestsRepo
	Grants        *AccessGrantsRepo
	Activity      *ActivityRepo
	Notifications *NotificationsRepo
	Emergency     *EmergencyRepo
	Insurance     *InsuranceRepo

	db *sql.DB
}

// NewManager wires all repositories over the given pool.
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		Users:         NewUsersRepo(db),
		Profiles:      NewProfilesRepo(db),
		Hospitals:     NewHospitalsRepo(db),
		Records:       NewRecordsRepo(db),
		Appointments:  NewAppointmentsRepo(db),
		Bills:         NewBillsRepo(db),
		Campaigns:     NewCampaignsRepo(db),
		Donations:     NewDonationsRepo(db),
		Wallet:        NewWalletRepo(db),
		Requests:      NewAccessRequestsRepo(db),
		Grants:        NewAccessGrantsRepo(db),
		Activity:      NewActivityRepo(db),
		Notifications: NewNotificationsRepo(db),
		Emergency:     NewEmergencyRepo(db),
		Insurance:     NewInsuranceRepo(db),
		db:            db,
	}
}

// DB exposes the underlying pool for migrations and health checks.
func (m *Manager) DB() *sql.DB { return m.db }

// helpers shared by the repos

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// jsonbIn marshals v for a jsonb column; nil-ish values become SQL NULL.
func jsonbIn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// jsonbOut unmarshals a jsonb column into dst; NULL leaves dst untouched.
func jsonbOut(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
