package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

// MockAuthService is a mock implementation of service.IAuthService
type MockAuthService struct {
	mock.Mock
}

var _ service.IAuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error) {
	return result[*types.AuthResponse](m.Called(ctx, req))
}

func (m *MockAuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error) {
	return result[*types.AuthResponse](m.Called(ctx, req))
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	return result[*types.TokenClaims](m.Called(token))
}
