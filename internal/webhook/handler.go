package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the Meta webhook endpoints. They live at the engine root,
// not under /api/v1: the callback URL is registered with Meta verbatim.
type Handler struct {
	svc         *Service
	verifyToken string
}

// NewHandler creates the webhook handler.
func NewHandler(svc *Service, verifyToken string) *Handler {
	return &Handler{svc: svc, verifyToken: verifyToken}
}

// RegisterRoutes mounts the verification and delivery endpoints.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/meta-webhook", h.Verify)
	engine.POST("/meta-webhook", h.Receive)
}

// Verify answers Meta's subscription handshake by echoing the challenge.
func (h *Handler) Verify(c *gin.Context) {
	if c.Query("hub.verify_token") != h.verifyToken {
		c.String(http.StatusForbidden, "Invalid token")
		return
	}
	c.String(http.StatusOK, c.Query("hub.challenge"))
}

// Receive accepts one webhook delivery. The response is always 200 so Meta
// does not retry on processing failures; dedup covers genuine retries.
func (h *Handler) Receive(c *gin.Context) {
	var notification Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	h.svc.Relay(c.Request.Context(), notification)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
