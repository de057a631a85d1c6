package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault_backend/internal/model"
	"github.com/medvault/medvault_backend/internal/storage/postgres"
	pasetotoken "github.com/medvault/medvault_backend/pkg/paseto"
	"github.com/medvault/medvault_backend/pkg/util/password"
)

type fakeUsers struct {
	rows map[uuid.UUID]model.User
}

func (f *fakeUsers) Create(_ context.Context, u model.User) error {
	f.rows[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, postgres.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, postgres.ErrNotFound
}

type fakeProfiles struct {
	rows map[uuid.UUID]model.Profile
}

func (f *fakeProfiles) Create(_ context.Context, p model.Profile) error {
	f.rows[p.UserID] = p
	return nil
}

type memSessions struct {
	rows map[uuid.UUID]uuid.UUID
}

func (m *memSessions) Save(_ context.Context, sessionID, userID uuid.UUID, _ time.Duration) error {
	m.rows[sessionID] = userID
	return nil
}

func (m *memSessions) UserID(_ context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	uid, ok := m.rows[sessionID]
	if !ok {
		return uuid.Nil, ErrSessionNotFound
	}
	return uid, nil
}

func (m *memSessions) Delete(_ context.Context, sessionID uuid.UUID) error {
	delete(m.rows, sessionID)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeUsers, *fakeProfiles, *memSessions, *pasetotoken.Manager) {
	t.Helper()

	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode:     pasetotoken.ModeLocal,
		Issuer:   "medvault",
		Audience: "medvault-api",
	}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)

	users := &fakeUsers{rows: map[uuid.UUID]model.User{}}
	profiles := &fakeProfiles{rows: map[uuid.UUID]model.Profile{}}
	sessions := &memSessions{rows: map[uuid.UUID]uuid.UUID{}}

	// light hash params keep the test fast
	svc := New(Config{Hasher: &password.Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}}, Deps{
		Users:    users,
		Profiles: profiles,
		Sessions: sessions,
		Tokens:   mgr,
	})
	return svc, users, profiles, sessions, mgr
}

func TestRegisterAndLogin(t *testing.T) {
	svc, users, profiles, _, mgr := newTestService(t)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Pat@Example.com",
		Password: "hunter2hunter2",
		FullName: "Pat Example",
	})
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", res.User.Email)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	// profile row exists alongside the user
	p, ok := profiles.rows[res.User.ID]
	require.True(t, ok)
	assert.Equal(t, "Pat Example", p.FullName)

	// password is stored hashed
	stored := users.rows[res.User.ID]
	assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)

	claims, err := mgr.Verify(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.True(t, claims.IsAccess())

	login, err := svc.Login(context.Background(), "pat@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "A@B.C", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@b.c", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@b.c", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, _, sessions, _ := newTestService(t)

	res, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)
	require.Len(t, sessions.rows, 1)

	pair, err := svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Len(t, sessions.rows, 1, "old session replaced, not accumulated")

	// the consumed refresh token is dead
	_, err = svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	res, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), res.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutKillsRefresh(t *testing.T) {
	svc, _, _, _, mgr := newTestService(t)

	res, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	claims, err := mgr.Verify(res.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, claims.SessionID)

	require.NoError(t, svc.Logout(context.Background(), *claims.SessionID))

	_, err = svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
