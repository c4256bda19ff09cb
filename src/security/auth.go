package security

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/LinhLe223/GMV-MAX/src/config"
)

const (
	bcryptCost = 12
	issuer     = "gmv-max"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthDisabled       = errors.New("operator login is not configured")
)

// AuthService issues and checks bearer tokens for the single operator account.
type AuthService struct {
	JWTSecret    string
	TokenExpiry  time.Duration
	Username     string
	PasswordHash string
}

func NewAuthService(cfg *config.AppConfig) *AuthService {
	return &AuthService{
		JWTSecret:    cfg.JWTSecret,
		TokenExpiry:  cfg.AccessTokenExpiry,
		Username:     cfg.OperatorUsername,
		PasswordHash: cfg.OperatorPasswordHash,
	}
}

// Enabled reports whether an operator password is configured. Without one, the API is open.
func (a *AuthService) Enabled() bool {
	return a.PasswordHash != ""
}

func (a *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AuthService) CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// CheckOperator verifies a login attempt against the configured operator.
func (a *AuthService) CheckOperator(username, password string) error {
	if !a.Enabled() {
		return ErrAuthDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := a.CompareHashAndPassword(a.PasswordHash, password)
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *AuthService) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.TokenExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
