package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fytours/tourdash/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Claims is the JWT payload for dashboard sessions.
type Claims struct {
	UserID string `json:"uid"`
	Admin  bool   `json:"adm"`
	jwt.RegisteredClaims
}

// AuthService issues JWTs for admin users of the dashboard.
type AuthService struct {
	log    *zap.Logger
	db     *store.DB
	secret string
}

func NewAuthService(log *zap.Logger, db *store.DB, secret string) *AuthService {
	return &AuthService{log: log, db: db, secret: secret}
}

// Login verifies the password against the users table and returns a signed
// token. Only admin-role users can open the dashboard.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var (
		userID string
		hash   string
		role   string
	)
	err := s.db.Pool.QueryRow(ctx,
		`SELECT user_id, password_hash, role FROM users WHERE email = $1`, email).
		Scan(&userID, &hash, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	if role != "admin" {
		return "", ErrInvalidCredentials
	}

	claims := Claims{
		UserID: userID,
		Admin:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", err
	}
	s.log.Info("admin login", zap.String("user_id", userID))
	return signed, nil
}
