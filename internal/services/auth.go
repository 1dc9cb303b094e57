package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/ats-backend/internal/models"
	"alfredoptarigan/ats-backend/internal/repositories"
)

const tokenIssuer = "ats-backend"

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, recruiterID uuid.UUID) (*models.Recruiter, error)
	UpdateProfile(ctx context.Context, recruiterID uuid.UUID, req models.UpdateProfileRequest) (*models.Recruiter, error)
	Refresh(ctx context.Context, recruiterID uuid.UUID) (*models.AuthResponse, error)
	VerifyToken(token string) (uuid.UUID, error)
}

type authService struct {
	recruiterRepo repositories.RecruiterRepository
	secret        []byte
	expiration    time.Duration
	now           func() time.Time
}

func NewAuthService(recruiterRepo repositories.RecruiterRepository, secret string, expiration time.Duration) AuthService {
	return &authService{
		recruiterRepo: recruiterRepo,
		secret:        []byte(secret),
		expiration:    expiration,
		now:           time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.recruiterRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repositories.ErrRecruiterNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	recruiter := &models.Recruiter{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		CompanyName:  req.CompanyName,
		IsActive:     true,
	}
	if err := s.recruiterRepo.Create(ctx, recruiter); err != nil {
		return nil, err
	}

	log.Printf("👤 Recruiter %s signed up\n", recruiter.ID)
	return s.issue(recruiter)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	recruiter, err := s.recruiterRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrRecruiterNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(recruiter.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !recruiter.IsActive {
		return nil, ErrAccountInactive
	}

	return s.issue(recruiter)
}

func (s *authService) Profile(ctx context.Context, recruiterID uuid.UUID) (*models.Recruiter, error) {
	return s.recruiterRepo.FindByID(ctx, recruiterID)
}

func (s *authService) UpdateProfile(ctx context.Context, recruiterID uuid.UUID, req models.UpdateProfileRequest) (*models.Recruiter, error) {
	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}

	if len(updates) > 0 {
		if err := s.recruiterRepo.Update(ctx, recruiterID, updates); err != nil {
			return nil, err
		}
	}

	return s.recruiterRepo.FindByID(ctx, recruiterID)
}

// Refresh issues a new token for a still-active account.
func (s *authService) Refresh(ctx context.Context, recruiterID uuid.UUID) (*models.AuthResponse, error) {
	recruiter, err := s.recruiterRepo.FindByID(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	if !recruiter.IsActive {
		return nil, ErrAccountInactive
	}

	return s.issue(recruiter)
}

func (s *authService) VerifyToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	recruiterID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return recruiterID, nil
}

func (s *authService) issue(recruiter *models.Recruiter) (*models.AuthResponse, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   recruiter.ID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.AuthResponse{Recruiter: recruiter, Token: token}, nil
}
