package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fairwaylabs/clubtrack/models"
	"github.com/fairwaylabs/clubtrack/repositories"
	"github.com/fairwaylabs/clubtrack/retry"
	"golang.org/x/crypto/bcrypt"
)

const (
	// HandicapMin and HandicapMax bound the accepted handicap index range.
	HandicapMin = -10
	HandicapMax = 54

	minPasswordLength = 8

	// registrationSettleDelay gives the identity row time to become visible
	// before the dependent profile write. The retry policy below covers the
	// cases where it still is not.
	registrationSettleDelay = 1 * time.Second
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// DefaultProfileRetryPolicy is the bounded retry applied to the profile
// insert during registration: a handful of attempts with a fixed delay, only
// on errors that look like the store has not caught up yet.
func DefaultProfileRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.FixedDelay(2 * time.Second),
		Retryable:   IsRetryableProfileInsert,
	}
}

// IsRetryableProfileInsert recognizes the transient error classes seen when
// the profile row is written before the identity it references is durable:
// foreign key violations, a stale schema cache, and not-found style messages.
// Everything else aborts registration immediately.
func IsRetryableProfileInsert(err error) bool {
	if err == nil {
		return false
	}
	if repositories.IsForeignKeyViolation(err) || repositories.IsUndefinedRelation(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "schema cache") || strings.Contains(msg, "not found")
}

type RegisterInput struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirm_password"`
	DateOfBirth      string `json:"date_of_birth"` // YYYY-MM-DD
	HomeClub         string `json:"home_club"`
	HandicapIndex    string `json:"handicap_index"`
	MembershipNumber string `json:"membership_number"`
	AcceptDisclaimer bool   `json:"accept_disclaimer"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, input LoginInput) (*models.Profile, error)
	GeneratePasswordResetToken(ctx context.Context, email string) (string, error)
	ResetPasswordByToken(ctx context.Context, token string, newPassword string) error
}

type authService struct {
	profileRepo repositories.ProfileRepository
	retryPolicy retry.Policy
	settleDelay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewAuthService(profileRepo repositories.ProfileRepository, retryPolicy retry.Policy, settleDelay time.Duration) AuthService {
	return &authService{
		profileRepo: profileRepo,
		retryPolicy: retryPolicy,
		settleDelay: settleDelay,
		sleep:       sleepContext,
	}
}

// NewDefaultAuthService wires the production retry policy and settle delay.
func NewDefaultAuthService(profileRepo repositories.ProfileRepository) AuthService {
	return NewAuthService(profileRepo, DefaultProfileRetryPolicy(), registrationSettleDelay)
}

// ValidateRegisterInput runs every field check and returns a per-field error
// map. No store call happens until this passes.
func ValidateRegisterInput(input RegisterInput) (time.Time, float64, *ValidationError) {
	fields := make(map[string]string)

	if strings.TrimSpace(input.FullName) == "" {
		fields["full_name"] = "name is required"
	}
	if !emailPattern.MatchString(input.Email) {
		fields["email"] = "a valid email address is required"
	}
	if len(input.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	} else if input.Password != input.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}

	var dob time.Time
	if input.DateOfBirth == "" {
		fields["date_of_birth"] = "date of birth is required"
	} else {
		var err error
		dob, err = time.Parse("2006-01-02", input.DateOfBirth)
		if err != nil {
			fields["date_of_birth"] = "date of birth must be YYYY-MM-DD"
		}
	}

	if strings.TrimSpace(input.HomeClub) == "" {
		fields["home_club"] = "home club is required"
	}

	var handicap float64
	if input.HandicapIndex == "" {
		fields["handicap_index"] = "handicap index is required"
	} else {
		var err error
		handicap, err = strconv.ParseFloat(strings.TrimSpace(input.HandicapIndex), 64)
		if err != nil {
			fields["handicap_index"] = "handicap index must be a number"
		} else if handicap < HandicapMin || handicap > HandicapMax {
			fields["handicap_index"] = fmt.Sprintf("handicap index must be between %d and %d", HandicapMin, HandicapMax)
		}
	}

	if strings.TrimSpace(input.MembershipNumber) == "" {
		fields["membership_number"] = "membership number is required"
	}
	if !input.AcceptDisclaimer {
		fields["accept_disclaimer"] = "the disclaimer must be accepted"
	}

	if len(fields) > 0 {
		return time.Time{}, 0, &ValidationError{Fields: fields}
	}
	return dob, handicap, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	dob, handicap, vErr := ValidateRegisterInput(input)
	if vErr != nil {
		return nil, vErr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		FullName:           strings.TrimSpace(input.FullName),
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:       string(hashedPassword),
		DateOfBirth:        dob,
		HomeClub:           strings.TrimSpace(input.HomeClub),
		HandicapIndex:      handicap,
		MembershipNumber:   strings.TrimSpace(input.MembershipNumber),
		Status:             models.StatusPending,
		Role:               models.RoleMember,
		DisclaimerAccepted: input.AcceptDisclaimer,
	}

	// Let the identity record settle before the dependent insert.
	if s.settleDelay > 0 {
		if err := s.sleep(ctx, s.settleDelay); err != nil {
			return nil, err
		}
	}

	err = s.retryPolicy.Do(ctx, func(ctx context.Context) error {
		return s.profileRepo.Create(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) GeneratePasswordResetToken(ctx context.Context, email string) (string, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Do not reveal whether the email is registered.
		return "", nil
	}
	token := generateRandomToken(32)
	if err := s.profileRepo.SetPasswordResetToken(ctx, profile.ID, token, time.Now().Add(1*time.Hour)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *authService) ResetPasswordByToken(ctx context.Context, token string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return &ValidationError{Fields: map[string]string{
			"new_password": fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		}}
	}

	profile, err := s.profileRepo.GetByPasswordResetToken(ctx, token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if profile.PasswordResetExpiresAt == nil || profile.PasswordResetExpiresAt.Before(time.Now()) {
		return ErrResetTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	profile.PasswordHash = string(hashedPassword)
	profile.PasswordResetToken = nil
	profile.PasswordResetExpiresAt = nil
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func generateRandomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		// crypto/rand failing is not survivable in any useful way.
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	b := make([]byte, length)
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
