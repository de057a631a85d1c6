package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/email"
)

type fakeRepo struct {
	rows map[uuid.UUID]model.Appointment
}

func (f *fakeRepo) Create(_ context.Context, a model.Appointment) error {
	f.rows[a.ID] = a
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (model.Appointment, error) {
	a, ok := f.rows[id]
	if !ok {
		return model.Appointment{}, postgres.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	out := []model.Appointment{}
	for _, a := range f.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	a, ok := f.rows[id]
	if !ok {
		return postgres.ErrNotFound
	}
	a.Status = status
	f.rows[id] = a
	return nil
}

func (f *fakeRepo) HasConflict(_ context.Context, userID, hospitalID uuid.UUID, at time.Time) (bool, error) {
	for _, a := range f.rows {
		if a.UserID != userID || a.HospitalID != hospitalID || a.Status != model.AppointmentScheduled {
			continue
		}
		diff := a.AppointmentDate.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if diff <= time.Hour {
			return true, nil
		}
	}
	return false, nil
}

type fakeHospitals struct {
	rows map[uuid.UUID]model.Hospital
}

func (f *fakeHospitals) GetByID(_ context.Context, id uuid.UUID) (model.Hospital, error) {
	h, ok := f.rows[id]
	if !ok {
		return model.Hospital{}, postgres.ErrNotFound
	}
	return h, nil
}

func (f *fakeHospitals) List(_ context.Context, city string) ([]model.Hospital, error) {
	out := []model.Hospital{}
	for _, h := range f.rows {
		if city == "" || h.City == city {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeUsers struct {
	rows map[uuid.UUID]model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, postgres.ErrNotFound
	}
	return u, nil
}

type fakeProfiles struct {
	rows map[uuid.UUID]model.Profile
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := f.rows[userID]
	if !ok {
		return model.Profile{}, postgres.ErrNotFound
	}
	return p, nil
}

type fakeActivity struct{ rows []model.ActivityLog }

func (f *fakeActivity) Insert(_ context.Context, a model.ActivityLog) error {
	f.rows = append(f.rows, a)
	return nil
}

type fakeMailer struct{ sent []email.Message }

func (f *fakeMailer) Send(_ context.Context, m email.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

type fakePublisher struct{ published []string }

func (f *fakePublisher) Publish(subject string, _ uuid.UUID) {
	f.published = append(f.published, subject)
}

type fixture struct {
	svc        Service
	repo       *fakeRepo
	mailer     *fakeMailer
	pub        *fakePublisher
	userID     uuid.UUID
	hospitalID uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:       &fakeRepo{rows: map[uuid.UUID]model.Appointment{}},
		mailer:     &fakeMailer{},
		pub:        &fakePublisher{},
		userID:     uuid.New(),
		hospitalID: uuid.New(),
	}
	hospitals := &fakeHospitals{rows: map[uuid.UUID]model.Hospital{
		f.hospitalID: {ID: f.hospitalID, Name: "City General", City: "Springfield", Location: "12 Main St"},
	}}
	users := &fakeUsers{rows: map[uuid.UUID]model.User{
		f.userID: {ID: f.userID, Email: "pat@example.com"},
	}}
	profiles := &fakeProfiles{rows: map[uuid.UUID]model.Profile{
		f.userID: {UserID: f.userID, FullName: "Pat"},
	}}
	f.svc = New(Deps{
		Appointments: f.repo,
		Hospitals:    hospitals,
		Users:        users,
		Profiles:     profiles,
		Activity:     &fakeActivity{},
		Mailer:       f.mailer,
		Publisher:    f.pub,
	})
	return f
}

func TestBook(t *testing.T) {
	f := newFixture()
	date := time.Now().Add(48 * time.Hour)

	a, err := f.svc.Book(context.Background(), BookInput{
		UserID:     f.userID,
		HospitalID: f.hospitalID,
		Date:       date,
		Reason:     "checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentScheduled, a.Status)

	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].To, "pat@example.com")
	assert.Len(t, f.pub.published, 1)
}

func TestBookConflict(t *testing.T) {
	f := newFixture()
	date := time.Now().Add(48 * time.Hour)

	_, err := f.svc.Book(context.Background(), BookInput{UserID: f.userID, HospitalID: f.hospitalID, Date: date})
	require.NoError(t, err)

	// 30 minutes later at the same hospital overlaps
	_, err = f.svc.Book(context.Background(), BookInput{UserID: f.userID, HospitalID: f.hospitalID, Date: date.Add(30 * time.Minute)})
	assert.ErrorIs(t, err, ErrSlotConflict)

	// two hours later is fine
	_, err = f.svc.Book(context.Background(), BookInput{UserID: f.userID, HospitalID: f.hospitalID, Date: date.Add(2 * time.Hour)})
	assert.NoError(t, err)
}

func TestBookValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Book(context.Background(), BookInput{
		UserID:     f.userID,
		HospitalID: f.hospitalID,
		Date:       time.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = f.svc.Book(context.Background(), BookInput{
		UserID:     f.userID,
		HospitalID: uuid.New(),
		Date:       time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrHospitalNotFound)
}

func TestCancel(t *testing.T) {
	f := newFixture()

	a, err := f.svc.Book(context.Background(), BookInput{
		UserID:     f.userID,
		HospitalID: f.hospitalID,
		Date:       time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), f.userID, a.ID))
	assert.Equal(t, model.AppointmentCancelled, f.repo.rows[a.ID].Status)

	// cancelling twice is rejected
	assert.ErrorIs(t, f.svc.Cancel(context.Background(), f.userID, a.ID), ErrNotScheduled)

	// someone else's appointment looks like it does not exist
	assert.ErrorIs(t, f.svc.Cancel(context.Background(), uuid.New(), a.ID), ErrAppointmentNotFound)
}
