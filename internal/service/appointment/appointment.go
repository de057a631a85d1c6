// Package appointment handles booking against the hospital directory.
// Bookings reject overlap within an hour at the same hospital; confirmation
// email is best-effort.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/events"
	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	"github.com/medvault/medvault_backend/pkg/email"
)

type Repo interface {
	Create(ctx context.Context, a model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	HasConflict(ctx context.Context, userID, hospitalID uuid.UUID, at time.Time) (bool, error)
}

type HospitalRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.Hospital, error)
	List(ctx context.Context, city string) ([]model.Hospital, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

type ProfileRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Profile, error)
}

type ActivityRepo interface {
	Insert(ctx context.Context, a model.ActivityLog) error
}

type Publisher interface {
	Publish(subject string, payloadID uuid.UUID)
}

// Mailer is the slice of the email client the service needs.
type Mailer interface {
	Send(ctx context.Context, m email.Message) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookInput struct {
	UserID     uuid.UUID
	HospitalID uuid.UUID
	Date       time.Time
	Reason     string
}

type Service interface {
	Book(ctx context.Context, in BookInput) (*model.Appointment, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) error
	Hospitals(ctx context.Context, city string) ([]model.Hospital, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	appointments Repo
	hospitals    HospitalRepo
	users        UserRepo
	profiles     ProfileRepo
	activity     ActivityRepo
	mailer       Mailer
	pub          Publisher

	now func() time.Time
}

type Deps struct {
	Appointments Repo
	Hospitals    HospitalRepo
	Users        UserRepo
	Profiles     ProfileRepo
	Activity     ActivityRepo
	Mailer       Mailer
	Publisher    Publisher
}

func New(d Deps) Service {
	return &appointmentService{
		appointments: d.Appointments,
		hospitals:    d.Hospitals,
		users:        d.Users,
		profiles:     d.Profiles,
		activity:     d.Activity,
		mailer:       d.Mailer,
		pub:          d.Publisher,
		now:          time.Now,
	}
}

func (s *appointmentService) Book(ctx context.Context, in BookInput) (*model.Appointment, error) {
	now := s.now()
	if !in.Date.After(now) {
		return nil, ErrPastDate
	}

	hospital, err := s.hospitals.GetByID(ctx, in.HospitalID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, fmt.Errorf("load hospital: %w", err)
	}

	conflict, err := s.appointments.HasConflict(ctx, in.UserID, in.HospitalID, in.Date)
	if err != nil {
		return nil, fmt.Errorf("check conflict: %w", err)
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	a := model.Appointment{
		ID:              uuid.New(),
		UserID:          in.UserID,
		HospitalID:      in.HospitalID,
		AppointmentDate: in.Date,
		Reason:          in.Reason,
		Status:          model.AppointmentScheduled,
		CreatedAt:       now,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	_ = s.activity.Insert(ctx, model.ActivityLog{
		ID:           uuid.New(),
		UserID:       in.UserID,
		ActivityType: model.ActivityAppointment,
		Title:        "Booked appointment",
		Description:  fmt.Sprintf("%s, %s", hospital.Name, in.Date.Format("Jan 2 15:04")),
		Metadata:     map[string]any{"appointment_id": a.ID.String(), "hospital_id": in.HospitalID.String()},
		CreatedAt:    now,
	})

	s.sendConfirmation(ctx, a, hospital)
	s.pub.Publish(events.AppointmentCreated(in.UserID), a.ID)
	return &a, nil
}

func (s *appointmentService) List(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

func (s *appointmentService) Cancel(ctx context.Context, userID, id uuid.UUID) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return err
	}
	if a.UserID != userID {
		return ErrAppointmentNotFound
	}
	if a.Status != model.AppointmentScheduled {
		return ErrNotScheduled
	}
	return s.appointments.UpdateStatus(ctx, id, model.AppointmentCancelled)
}

func (s *appointmentService) Hospitals(ctx context.Context, city string) ([]model.Hospital, error) {
	return s.hospitals.List(ctx, city)
}

func (s *appointmentService) sendConfirmation(ctx context.Context, a model.Appointment, hospital model.Hospital) {
	if s.mailer == nil {
		return
	}

	u, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		return
	}
	name := ""
	if p, err := s.profiles.GetByUserID(ctx, a.UserID); err == nil {
		name = p.FullName
	}

	msg := email.BuildAppointmentConfirmationEmail(email.AppointmentEmailData{
		PatientName: name,
		Email:       u.Email,
		DoctorName:  hospital.Name,
		Hospital:    hospital.Location,
		When:        a.AppointmentDate.Format("Monday, Jan 2 2006 at 15:04"),
	})
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Warn("appointment: confirmation email failed", "appointment_id", a.ID, "err", err)
	}
}
