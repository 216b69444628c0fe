package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"vuttr/internal/apperrors"
	"vuttr/internal/models"
	"vuttr/internal/repositories"
	"vuttr/pkg/mailer"
)

// AuthService handles business logic for authentication: signup, login,
// token issue and validation, and the password-reset flow.
type AuthService struct {
	users     repositories.UserRepository
	mail      mailer.Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	resetTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, mail mailer.Mailer, jwtSecret string, tokenTTL, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		mail:      mail,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		resetTTL:  resetTTL,
	}
}

// Signup registers a new user, hashes the password, sends the welcome
// mail and returns a fresh session token. The welcome mail is sent
// before the caller writes the success response.
func (s *AuthService) Signup(ctx context.Context, user *models.User) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	if err := s.mail.SendWelcome(ctx, user.Email, user.Name); err != nil {
		return "", apperrors.Internal("There was an error sending the email. Try again later", err)
	}

	return s.IssueToken(user.ID)
}

// Login authenticates a user by email and password. Every failure mode
// (missing field, unknown email, wrong password) yields the same
// InvalidCredentials error so callers cannot probe which part failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	invalid := apperrors.InvalidCredentials("Incorrect email or password")

	if email == "" || password == "" {
		return nil, "", invalid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", invalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", invalid
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a new session token for the given user ID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token, returning its
// claims if the signature and expiry check out.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthenticated("Invalid token. Please log in again")
	}
	return claims, nil
}

// CurrentUser resolves the user a validated token belongs to. It fails
// if the user no longer exists or changed the password after the token
// was issued.
func (s *AuthService) CurrentUser(ctx context.Context, claims jwt.MapClaims) (*models.User, error) {
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, apperrors.Unauthenticated("Invalid token. Please log in again")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unauthenticated("The user belonging to this token no longer exists")
	}

	iat, _ := claims["iat"].(float64)
	if user.ChangedPasswordAfter(time.Unix(int64(iat), 0)) {
		return nil, apperrors.StaleToken("Password was changed recently. Please log in again")
	}

	return user, nil
}

// ForgotPassword creates a single-use reset token, persists its hash
// with an expiry and mails the plaintext token. If the mail cannot be
// sent the token is cleared again so no dangling valid token remains.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.NotFound("There is no user with that email address")
	}

	plain, hash, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := time.Now().Add(s.resetTTL)
	user.PasswordResetToken = hash
	user.PasswordResetExpires = &expires
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/%s", resetURLBase, plain)
	if err := s.mail.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		user.PasswordResetToken = ""
		user.PasswordResetExpires = nil
		if saveErr := s.users.Save(ctx, user); saveErr != nil {
			return fmt.Errorf("failed to clear reset token after mail failure: %w", saveErr)
		}
		return apperrors.Internal("There was an error sending the email. Try again later", err)
	}

	return nil
}

// ResetPassword consumes a reset token: if its hash matches a user and
// the expiry is still in the future, the password is replaced, the
// reset fields are cleared and a fresh session token is issued.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, string, error) {
	hash := hashResetToken(token)

	user, err := s.users.GetByResetToken(ctx, hash, time.Now())
	if err != nil {
		return nil, "", apperrors.TokenInvalidOrExpired("Token is invalid or has expired")
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, "", err
	}

	session, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// UpdatePassword changes the password of an authenticated user after
// verifying the current one, then issues a fresh session token. Tokens
// issued before the change become stale.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*models.User, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return nil, "", apperrors.InvalidCredentials("Your current password is wrong")
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, "", err
	}

	session, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// setPassword hashes and stores a new password, stamps the change time
// and clears any outstanding reset token. The stamp is backdated one
// second so the session token issued right after is not itself stale.
func (s *AuthService) setPassword(ctx context.Context, user *models.User, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashed)
	user.PasswordChangedAt = time.Now().Add(-time.Second)
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil

	return s.users.Save(ctx, user)
}

// newResetToken returns a random plaintext token and its sha256 hash.
// Only the hash is ever persisted.
func newResetToken() (plain, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, hashResetToken(plain), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
