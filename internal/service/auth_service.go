package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// AuthService issues and resolves bearer credentials for sellers and buyers.
// A token resolves only against its own role's table: a buyer token can never
// authorize a seller action, and vice versa.
type AuthService struct {
	store repository.Store
}

// NewAuthService constructs a new AuthService.
func NewAuthService(store repository.Store) *AuthService {
	return &AuthService{store: store}
}

// CreateSeller creates a seller with a fresh id and bearer token. The token
// is returned to the caller exactly once; it is not exposed on any read path.
func (s *AuthService) CreateSeller(ctx context.Context, name string) (*models.Seller, error) {
	token, err := utils.GenerateSellerToken()
	if err != nil {
		return nil, err
	}
	seller := &models.Seller{
		ID:        uuid.New().String(),
		Name:      name,
		AuthToken: token,
	}
	if err := s.store.CreateSeller(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}

// CreateBuyer creates a buyer with a fresh id and bearer token.
func (s *AuthService) CreateBuyer(ctx context.Context, name string) (*models.Buyer, error) {
	token, err := utils.GenerateBuyerToken()
	if err != nil {
		return nil, err
	}
	buyer := &models.Buyer{
		ID:        uuid.New().String(),
		Name:      name,
		AuthToken: token,
	}
	if err := s.store.CreateBuyer(ctx, buyer); err != nil {
		return nil, err
	}
	return buyer, nil
}

// ResolveSeller resolves an Authorization header value to a seller. Tokens
// issued to buyers fail with ErrWrongRole rather than silently succeeding.
func (s *AuthService) ResolveSeller(ctx context.Context, authHeader string) (*models.Seller, error) {
	token, err := extractToken(authHeader)
	if err != nil {
		return nil, err
	}

	seller, err := s.store.GetSellerByToken(ctx, token)
	if err == nil {
		return seller, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	if _, berr := s.store.GetBuyerByToken(ctx, token); berr == nil {
		return nil, utils.ErrWrongRole
	}
	return nil, utils.ErrInvalidToken
}

// ResolveBuyer resolves an Authorization header value to a buyer.
func (s *AuthService) ResolveBuyer(ctx context.Context, authHeader string) (*models.Buyer, error) {
	token, err := extractToken(authHeader)
	if err != nil {
		return nil, err
	}

	buyer, err := s.store.GetBuyerByToken(ctx, token)
	if err == nil {
		return buyer, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	if _, serr := s.store.GetSellerByToken(ctx, token); serr == nil {
		return nil, utils.ErrWrongRole
	}
	return nil, utils.ErrInvalidToken
}

// extractToken strips an optional "Bearer " prefix. The prefix is tolerated
// but not required.
func extractToken(authHeader string) (string, error) {
	token := strings.TrimSpace(authHeader)
	token = strings.TrimPrefix(token, "Bearer ")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", utils.ErrMissingToken
	}
	return token, nil
}
