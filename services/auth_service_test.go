package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
	"github.com/fairwaylabs/clubtrack/retry"
	"golang.org/x/crypto/bcrypt"

	"github.com/lib/pq"
)

type fakeProfileRepo struct {
	profiles    map[int]*models.Profile
	byEmail     map[string]*models.Profile
	nextID      int
	createCalls int
	createErrs  []error // consumed per call; nil slot means success
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[int]*models.Profile),
		byEmail:  make(map[string]*models.Profile),
		nextID:   1,
	}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	call := r.createCalls
	r.createCalls++
	if call < len(r.createErrs) && r.createErrs[call] != nil {
		return r.createErrs[call]
	}
	if _, exists := r.byEmail[profile.Email]; exists {
		return repositories.ErrProfileEmailConflict
	}
	profile.ID = r.nextID
	r.nextID++
	profile.CreatedAt = time.Now()
	copied := *profile
	r.profiles[profile.ID] = &copied
	r.byEmail[profile.Email] = &copied
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	if p, ok := r.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if p, ok := r.byEmail[email]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) GetByPasswordResetToken(ctx context.Context, token string) (*models.Profile, error) {
	for _, p := range r.profiles {
		if p.PasswordResetToken != nil && *p.PasswordResetToken == token {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := r.profiles[profile.ID]; !ok {
		return repositories.ErrProfileNotFound
	}
	copied := *profile
	r.profiles[profile.ID] = &copied
	r.byEmail[profile.Email] = &copied
	return nil
}

func (r *fakeProfileRepo) UpdateStatus(ctx context.Context, id int, status models.ProfileStatus) error {
	p, ok := r.profiles[id]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeProfileRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	p, ok := r.profiles[id]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.Role = role
	return nil
}

func (r *fakeProfileRepo) SetPasswordResetToken(ctx context.Context, id int, token string, expiresAt time.Time) error {
	p, ok := r.profiles[id]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.PasswordResetToken = &token
	p.PasswordResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeProfileRepo) List(ctx context.Context, status *models.ProfileStatus) ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		if status == nil || p.Status == *status {
			out = append(out, *p)
		}
	}
	return out, nil
}

// immediateRetryPolicy is the production policy with the delays stripped out.
func immediateRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.FixedDelay(0),
		Retryable:   IsRetryableProfileInsert,
	}
}

func newTestAuthService(repo repositories.ProfileRepository) AuthService {
	return NewAuthService(repo, immediateRetryPolicy(), 0)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName:         "Jordan Spieth",
		Email:            "jordan@example.com",
		Password:         "longenough",
		ConfirmPassword:  "longenough",
		DateOfBirth:      "1993-07-27",
		HomeClub:         "Oakwood GC",
		HandicapIndex:    "2.4",
		MembershipNumber: "M-1001",
		AcceptDisclaimer: true,
	}
}

func TestRegisterHappyPath(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestAuthService(repo)

	profile, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if profile.Status != models.StatusPending {
		t.Errorf("new profile should start pending, got %q", profile.Status)
	}
	if profile.Role != models.RoleMember {
		t.Errorf("new profile should start as member, got %q", profile.Role)
	}
	if profile.PasswordHash != "" {
		t.Errorf("password hash must not leave the service")
	}

	stored, _ := repo.GetByEmail(context.Background(), "jordan@example.com")
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestRegisterValidationBlocksStoreCall(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RegisterInput)
		wantField string
	}{
		{"handicap above range", func(in *RegisterInput) { in.HandicapIndex = "54.1" }, "handicap_index"},
		{"handicap below range", func(in *RegisterInput) { in.HandicapIndex = "-10.5" }, "handicap_index"},
		{"handicap not a number", func(in *RegisterInput) { in.HandicapIndex = "scratch" }, "handicap_index"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "short", "short" }, "password"},
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "different1" }, "confirm_password"},
		{"bad date of birth", func(in *RegisterInput) { in.DateOfBirth = "27/07/1993" }, "date_of_birth"},
		{"disclaimer declined", func(in *RegisterInput) { in.AcceptDisclaimer = false }, "accept_disclaimer"},
		{"missing membership number", func(in *RegisterInput) { in.MembershipNumber = " " }, "membership_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeProfileRepo()
			svc := newTestAuthService(repo)

			input := validRegisterInput()
			tt.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("expected a %q field error, got %v", tt.wantField, vErr.Fields)
			}
			if repo.createCalls != 0 {
				t.Errorf("validation must run before any store call, saw %d creates", repo.createCalls)
			}
		})
	}
}

func TestRegisterHandicapBoundariesAccepted(t *testing.T) {
	for _, hc := range []string{"-10", "54", "0"} {
		repo := newFakeProfileRepo()
		svc := newTestAuthService(repo)

		input := validRegisterInput()
		input.HandicapIndex = hc
		if _, err := svc.Register(context.Background(), input); err != nil {
			t.Errorf("handicap %q should be accepted: %v", hc, err)
		}
	}
}

func TestRegisterRetriesTransientInsertFailures(t *testing.T) {
	fkErr := &pq.Error{Code: "23503", Message: "insert violates foreign key constraint"}

	repo := newFakeProfileRepo()
	repo.createErrs = []error{fkErr, fkErr, nil}
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register should succeed on the third attempt: %v", err)
	}
	if repo.createCalls != 3 {
		t.Errorf("expected 3 create attempts, got %d", repo.createCalls)
	}
}

func TestRegisterGivesUpAfterMaxAttempts(t *testing.T) {
	fkErr := &pq.Error{Code: "23503", Message: "insert violates foreign key constraint"}

	repo := newFakeProfileRepo()
	repo.createErrs = []error{fkErr, fkErr, fkErr, fkErr}
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), validRegisterInput()); err == nil {
		t.Fatal("expected registration to fail after exhausting retries")
	}
	if repo.createCalls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", repo.createCalls)
	}
}

func TestRegisterDoesNotRetryNonTransientErrors(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.createErrs = []error{repositories.ErrProfileEmailConflict}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict, got %v", err)
	}
	if repo.createCalls != 1 {
		t.Errorf("a conflict must abort immediately, saw %d attempts", repo.createCalls)
	}
}

func TestIsRetryableProfileInsert(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"foreign key violation", &pq.Error{Code: "23503"}, true},
		{"undefined relation", &pq.Error{Code: "42P01"}, true},
		{"schema cache message", errors.New("could not find the table in the schema cache"), true},
		{"not found message", errors.New("relation not found"), true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"plain failure", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableProfileInsert(tt.err); got != tt.want {
				t.Errorf("IsRetryableProfileInsert(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestAuthService(repo)
	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.Login(context.Background(), LoginInput{Email: "Jordan@Example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if profile.Email != "jordan@example.com" {
		t.Errorf("unexpected profile returned: %q", profile.Email)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "wrongpass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password should yield ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "longenough"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email should yield ErrInvalidCredentials, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestAuthService(repo)
	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.GeneratePasswordResetToken(context.Background(), "jordan@example.com")
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token for a registered email")
	}

	// An unknown email must not reveal anything.
	ghost, err := svc.GeneratePasswordResetToken(context.Background(), "ghost@example.com")
	if err != nil || ghost != "" {
		t.Errorf("unknown email should return empty token and no error, got %q, %v", ghost, err)
	}

	if err := svc.ResetPasswordByToken(context.Background(), token, "brandnewpass"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "brandnewpass"}); err != nil {
		t.Errorf("login with the new password failed: %v", err)
	}

	if err := svc.ResetPasswordByToken(context.Background(), "bogus-token", "brandnewpass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("bogus token should yield ErrResetTokenInvalid, got %v", err)
	}
}
