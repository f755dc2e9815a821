package webhook

import (
	chatservice "dabachat_backend/internal/chat/service"
	"dabachat_backend/internal/whatsapp"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/events"
	"dabachat_backend/platform/logger"

	apphttp "dabachat_backend/internal/http"
)

// Module is the WhatsApp webhook module.
type Module struct {
	handler *Handler
}

// NewModule wires the relay on top of the chat service.
func NewModule(cfg config.WhatsAppConfig, redisCfg config.RedisConfig, chat *chatservice.Service, bus events.Bus, log *logger.Logger) *Module {
	sender := whatsapp.NewClient(cfg, log)
	dedup := NewDedup(redisCfg, log)
	svc := NewService(chat, sender, dedup, bus, log)

	return &Module{handler: NewHandler(svc, cfg.GetWebhookVerifyToken())}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the Meta callback endpoints on the engine root.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Engine)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
