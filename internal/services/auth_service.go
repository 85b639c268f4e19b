package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
	otpDigits       = 6
)

// authService handles sign-up, verification and login.
type authService struct {
	db     *gorm.DB
	mailer Mailer
	otpTTL time.Duration
	now    func() time.Time
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(db *gorm.DB, mailer Mailer, otpTTL time.Duration) AuthServicer {
	return &authService{db: db, mailer: mailer, otpTTL: otpTTL, now: time.Now}
}

// SignUp registers an unconfirmed user with a default profile and mails a
// one-time code. Signing up again before confirming replaces the password
// and issues a fresh code.
func (s *authService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	code, err := generateOTP()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expires := s.now().Add(s.otpTTL)

	var user models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case err == nil:
			if user.Confirmed() {
				return apperrors.ErrDuplicateEmail
			}
			user.Password = string(hashedPassword)
			user.OTPHash = hashCode(code)
			user.OTPExpiresAt = &expires
			user.FailedLoginAttempts = 0
			return tx.Save(&user).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        email,
				Password:     string(hashedPassword),
				OTPHash:      hashCode(code),
				OTPExpiresAt: &expires,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := models.DefaultProfile(user.ID, email)
			return tx.Create(&profile).Error

		default:
			return err
		}
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("sending code: %w", err))
	}
	return &user, nil
}

// ConfirmOTP marks the user's email as confirmed when code matches the
// outstanding one-time code. A code works once, and maxFailedLogins wrong
// guesses burn it; the user then has to sign up again for a new one.
func (s *authService) ConfirmOTP(email, code string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	if user.OTPHash == "" || user.OTPExpiresAt == nil || now.After(*user.OTPExpiresAt) {
		return nil, apperrors.ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(user.OTPHash)) != 1 {
		updates := map[string]any{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["failed_login_attempts"] = 0
			updates["otp_hash"] = ""
			updates["otp_expires_at"] = nil
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidOTP
	}

	err := s.db.Model(&user).Updates(map[string]any{
		"email_confirmed_at":    now,
		"otp_hash":              "",
		"otp_expires_at":        nil,
		"last_login_at":         now,
		"failed_login_attempts": 0,
	}).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.EmailConfirmedAt = &now
	user.LastLoginAt = &now
	user.OTPHash, user.OTPExpiresAt = "", nil
	user.FailedLoginAttempts = 0
	return &user, nil
}

// AttemptLogin checks credentials with lockout: after maxFailedLogins wrong
// passwords the account is locked for lockoutDuration.
func (s *authService) AttemptLogin(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, apperrors.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		updates := map[string]any{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockoutDuration)
			updates["failed_login_attempts"] = 0
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, apperrors.ErrEmailNotConfirmed
	}

	err := s.db.Model(&user).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *authService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// StoreRefreshTokenHash replaces the user's current refresh token. An empty
// hash revokes it.
func (s *authService) StoreRefreshTokenHash(userID, tokenHash string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the hash of the user's current refresh token.
func (s *authService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

func generateOTP() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func hashCode(code string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(h[:])
}
