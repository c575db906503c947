package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/supporthub/backend/internal/models"
)

type fakeStore struct {
	t           *testing.T
	user        models.User
	role        string
	sessions    map[string]models.Session
	storeCalled bool
}

func newFakeStore(t *testing.T) *fakeStore {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	return &fakeStore{
		t: t,
		user: models.User{
			ID:           "u1",
			Email:        "agent@shatel.ir",
			PasswordHash: string(hash),
		},
		sessions: map[string]models.Session{},
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, email, passwordHash, fullName string) (models.User, error) {
	f.storeCalled = true
	return models.User{ID: "new", Email: email}, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	f.storeCalled = true
	if email != f.user.Email {
		return models.User{}, errors.New("no rows")
	}
	return f.user, nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	return models.Profile{UserID: userID, FullName: "Agent One", Email: f.user.Email}, nil
}

func (f *fakeStore) GetUserRole(ctx context.Context, userID string) (string, error) {
	if f.role == "" {
		return models.RoleAgent, nil
	}
	return f.role, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, userID string, ttl time.Duration) (models.Session, error) {
	f.storeCalled = true
	sess := models.Session{Token: "tok-1", UserID: userID, ExpiresAt: time.Now().Add(ttl)}
	f.sessions[sess.Token] = sess
	return sess, nil
}

func (f *fakeStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	sess, ok := f.sessions[token]
	if !ok {
		return models.Session{}, errors.New("no rows")
	}
	return sess, nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func newService(store Store) *Service {
	return &Service{Store: store, Domain: "@shatel.ir", SessionTTL: time.Hour}
}

func TestSignInRejectsForeignDomainBeforeStoreCall(t *testing.T) {
	store := newFakeStore(t)
	svc := newService(store)
	_, err := svc.SignIn(context.Background(), "agent@example.com", "secret123")
	if !errors.Is(err, ErrDomainNotAllowed) {
		t.Fatalf("expected ErrDomainNotAllowed, got %v", err)
	}
	if store.storeCalled {
		t.Fatal("domain check must run before any store call")
	}
}

func TestSignInIssuesSessionWithDefaultRole(t *testing.T) {
	store := newFakeStore(t)
	svc := newService(store)
	ident, err := svc.SignIn(context.Background(), "agent@shatel.ir", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.Token == "" {
		t.Fatal("expected session token")
	}
	if ident.Role != models.RoleAgent {
		t.Fatalf("expected default agent role, got %s", ident.Role)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	store := newFakeStore(t)
	svc := newService(store)
	_, err := svc.SignIn(context.Background(), "agent@shatel.ir", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestIdentifyRoundTripAndSignOut(t *testing.T) {
	store := newFakeStore(t)
	store.role = models.RoleShiftLead
	svc := newService(store)

	ident, err := svc.SignIn(context.Background(), "agent@shatel.ir", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := svc.Identify(context.Background(), ident.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Role != models.RoleShiftLead || resolved.FullName != "Agent One" {
		t.Fatalf("unexpected identity: %+v", resolved)
	}

	if err := svc.SignOut(context.Background(), ident.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Identify(context.Background(), ident.Token); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after sign-out, got %v", err)
	}
}

func TestSignUpDomainGate(t *testing.T) {
	store := newFakeStore(t)
	svc := newService(store)
	if _, err := svc.SignUp(context.Background(), "x@gmail.com", "secret123", "X"); !errors.Is(err, ErrDomainNotAllowed) {
		t.Fatalf("expected ErrDomainNotAllowed, got %v", err)
	}
	if store.storeCalled {
		t.Fatal("no store call expected for rejected domain")
	}
}
