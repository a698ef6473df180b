package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	userTokenTTL  = 24 * time.Hour
	adminTokenTTL = 8 * time.Hour
	otpTTL        = 5 * time.Minute

	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidPhone = errors.New("auth: phone number must have at least 10 digits")
	ErrInvalidOTP   = errors.New("auth: code invalid or expired")
	ErrBadAdmin     = errors.New("auth: invalid admin credentials")
)

// otpNamespace makes user IDs a pure function of the phone number, so the
// same rider gets the same stats blob on every login.
var otpNamespace = uuid.NameSpaceOID

type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

type Service struct {
	secret        []byte
	rdb           *redis.Client
	adminEmail    string
	adminPassword string
}

func NewService(secret string, rdb *redis.Client, adminEmail, adminPassword string) *Service {
	return &Service{
		secret:        []byte(secret),
		rdb:           rdb,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func otpKey(phone string) string { return "ecomove:otp:" + phone }

// RequestOTP issues a 4-digit login code for the phone number. Only a bcrypt
// hash of the code is stored, and it expires after five minutes.
//
// There is no SMS gateway yet; the code is logged and returned so the
// prototype client can display it.
func (s *Service) RequestOTP(ctx context.Context, phone string) (string, error) {
	phone = NormalizePhone(phone)
	if len(phone) < 10 {
		return "", ErrInvalidPhone
	}

	code := fmt.Sprintf("%04d", rand.Intn(10000))
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, otpKey(phone), string(hash), otpTTL).Err(); err != nil {
		return "", err
	}

	log.Printf("auth: OTP for %s…%s is %s", phone[:2], phone[len(phone)-2:], code)
	return code, nil
}

// VerifyOTP checks the code and, on success, burns it and issues a user
// token. The user ID is derived from the phone number.
func (s *Service) VerifyOTP(ctx context.Context, phone, code, name string) (TokenResponse, error) {
	phone = NormalizePhone(phone)
	if len(phone) < 10 {
		return TokenResponse{}, ErrInvalidPhone
	}

	hash, err := s.rdb.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return TokenResponse{}, ErrInvalidOTP
	}
	if err != nil {
		return TokenResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return TokenResponse{}, ErrInvalidOTP
	}
	if err := s.rdb.Del(ctx, otpKey(phone)).Err(); err != nil {
		return TokenResponse{}, err
	}

	userID := UserIDForPhone(phone)
	return s.issueToken(userID, name, RoleUser, userTokenTTL)
}

// AdminLogin exchanges the configured operator credentials for an admin token.
func (s *Service) AdminLogin(email, password string) (TokenResponse, error) {
	if s.adminEmail == "" || email != s.adminEmail || password != s.adminPassword {
		return TokenResponse{}, ErrBadAdmin
	}
	return s.issueToken("admin", s.adminEmail, RoleAdmin, adminTokenTTL)
}

// UserIDForPhone maps a normalized phone number to its stable user ID.
func UserIDForPhone(phone string) string {
	return uuid.NewSHA1(otpNamespace, []byte("ecomove:"+phone)).String()
}

func (s *Service) issueToken(userID, name, role string, ttl time.Duration) (TokenResponse, error) {
	claims := Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl.Seconds()),
		UserID:    userID,
		Role:      role,
	}, nil
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}
