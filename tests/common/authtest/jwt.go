//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"travel-backoffice/internal/domain/user"
	"travel-backoffice/internal/pkg/config"
	"travel-backoffice/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) Service(t *testing.T) *jwt.Service {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	return jwt.NewService(h.cfg.Secret, duration, h.cfg.Issuer)
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := h.Service(t).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	// expired well past the validator's leeway
	service := jwt.NewService(h.cfg.Secret, -time.Minute, h.cfg.Issuer)
	token, err := service.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}
