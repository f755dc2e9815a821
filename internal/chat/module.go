// Package chat provides the chat domain module: sessions, message history
// and the HTTP surface that relays user turns through the booking assistant.
package chat

import (
	"dabachat_backend/internal/chat/handler"
	"dabachat_backend/internal/chat/repository"
	"dabachat_backend/internal/chat/service"
	"dabachat_backend/platform/events"
	"dabachat_backend/platform/logger"
	"dabachat_backend/platform/validator"

	apphttp "dabachat_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the chat domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the chat module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, assistant service.Assistant, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, assistant, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the service layer for other modules (webhook relay).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1, ctx.RateLimiter.RateLimit())
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
