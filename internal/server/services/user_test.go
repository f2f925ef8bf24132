package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkuznecovs/healthmon/internal/dbx"
	"github.com/mkuznecovs/healthmon/internal/server/auth"
	"github.com/mkuznecovs/healthmon/internal/server/config"
	"github.com/mkuznecovs/healthmon/internal/server/models"
	usersrepo "github.com/mkuznecovs/healthmon/internal/server/repositories/users"
	vectorsrepo "github.com/mkuznecovs/healthmon/internal/server/repositories/vectors"
	"github.com/mkuznecovs/healthmon/internal/shared"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	findOut *models.User
	findErr error

	created []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = append(f.created, u)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

type fakeVectorsRepo struct {
	inserted  []*models.Vector
	insertErr error
	stored    bool

	recentOut []*models.Vector
	recentErr error
}

func (f *fakeVectorsRepo) Insert(ctx context.Context, v *models.Vector) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.inserted = append(f.inserted, v)
	return f.stored, nil
}

func (f *fakeVectorsRepo) SelectRecent(ctx context.Context, userID int64, limit int) ([]*models.Vector, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.recentOut, nil
}

type fakeRepoManager struct {
	users   *fakeUsersRepo
	vectors *fakeVectorsRepo
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return f.users }
func (f *fakeRepoManager) Vectors(dbx.DBTX) vectorsrepo.Repository      { return f.vectors }

// --- tests ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	users := &fakeUsersRepo{createOut: &models.User{ID: 42, Username: "alice", UserType: "free"}}
	svc := newUserService(t, db, &fakeRepoManager{users: users})

	token, err := svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	id, err := auth.GetUserIDFromToken(token, []byte("k"))
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if id != 42 {
		t.Fatalf("token carries user id %d, want 42", id)
	}

	if len(users.created) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(users.created))
	}
	got := users.created[0]
	if got.UserType != "free" {
		t.Fatalf("new accounts must start as free, got %q", got.UserType)
	}
	if got.PasswordHash == "pw" || got.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegister_LoginTaken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	users := &fakeUsersRepo{createErr: shared.ErrorLoginAlreadyExists}
	svc := newUserService(t, db, &fakeRepoManager{users: users})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	if !errors.Is(err, shared.ErrorLoginAlreadyExists) {
		t.Fatalf("want shared.ErrorLoginAlreadyExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	users := &fakeUsersRepo{findOut: &models.User{ID: 7, Username: "alice", PasswordHash: hash}}
	svc := newUserService(t, db, &fakeRepoManager{users: users})

	token, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	id, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if id != 7 {
		t.Fatalf("token carries user id %d, want 7", id)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	users := &fakeUsersRepo{findOut: &models.User{ID: 7, Username: "alice", PasswordHash: hash}}
	svc := newUserService(t, db, &fakeRepoManager{users: users})

	_, err = svc.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, shared.ErrorInvalidLoginPassword) {
		t.Fatalf("want shared.ErrorInvalidLoginPassword, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	users := &fakeUsersRepo{findErr: shared.ErrorNotFound}
	svc := newUserService(t, db, &fakeRepoManager{users: users})

	_, err := svc.Login(context.Background(), "ghost", "pw")
	if !errors.Is(err, shared.ErrorInvalidLoginPassword) {
		t.Fatalf("unknown users must look like a bad password, got %v", err)
	}
}

func TestVerifyToken_Invalid(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := newUserService(t, db, &fakeRepoManager{users: &fakeUsersRepo{}})

	_, err := svc.VerifyToken("not-a-token")
	if !errors.Is(err, shared.ErrorInvalidToken) {
		t.Fatalf("want shared.ErrorInvalidToken, got %v", err)
	}
}

func TestIsPremium(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	cases := []struct {
		name string
		user *models.User
		want bool
	}{
		{"free", &models.User{UserType: "free"}, false},
		{"premium no end", &models.User{UserType: "premium"}, true},
		{"premium active", &models.User{UserType: "premium", SubscriptionEnd: &future}, true},
		{"premium expired", &models.User{UserType: "premium", SubscriptionEnd: &past}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPremium(tc.user); got != tc.want {
				t.Fatalf("IsPremium = %v, want %v", got, tc.want)
			}
		})
	}
}
