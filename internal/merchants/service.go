package merchants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/offerhubhq/offerhub-backend/pkg/auth"
	"github.com/offerhubhq/offerhub-backend/pkg/config"
	"github.com/offerhubhq/offerhub-backend/pkg/db"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/security"
)

const minPasswordLength = 10

// Service defines the merchant account surface.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
}

// ServiceParams groups dependencies for the merchant service.
type ServiceParams struct {
	Repo     Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Now      func() time.Time
}

// RegisterInput captures the data required to open a merchant account.
type RegisterInput struct {
	Email        string
	Password     string
	BusinessName string
}

// AuthResult carries the merchant and their freshly minted access token.
type AuthResult struct {
	Merchant    *models.Merchant
	AccessToken string
}

type service struct {
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds a merchant service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("merchant repo required")
	}
	if strings.TrimSpace(params.JWT.Secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repo,
		jwt:      params.JWT,
		password: params.Password,
		now:      now,
	}, nil
}

// Register opens a merchant account and signs the caller in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	merchant := &models.Merchant{
		Email:        email,
		PasswordHash: hash,
		BusinessName: strings.TrimSpace(input.BusinessName),
		Role:         enums.MemberRoleMerchant,
	}
	if err := s.repo.Create(ctx, merchant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist merchant")
	}

	return s.authResult(merchant)
}

// Login verifies credentials and mints an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	merchant, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup merchant")
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, merchant.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.authResult(merchant)
}

// Get returns a merchant by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	merchant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup merchant")
	}
	if merchant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}
	return merchant, nil
}

func (s *service) authResult(merchant *models.Merchant) (*AuthResult, error) {
	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		MerchantID: merchant.ID,
		Role:       merchant.Role,
		JTI:        uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResult{Merchant: merchant, AccessToken: token}, nil
}
