package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/middleware"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/service"
)

// AdminHandler exposes the moderation endpoints. Routes are mounted behind
// the AdminOnly middleware; the service re-checks the actor anyway so the
// authorization gate does not depend on route wiring.
type AdminHandler struct {
	Svc *service.ListingService
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/listings/pending", h.Pending)
	rg.GET("/admin/listings/stats", h.Stats)
	rg.PUT("/admin/listings/:id/approve", h.Approve)
	rg.PUT("/admin/listings/:id/reject", h.Reject)
	rg.PUT("/admin/listings/:id/pending", h.MarkPending)
}

// GET /api/admin/listings/pending?limit=10&offset=0
func (h *AdminHandler) Pending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Svc.Pending(c.Request.Context(), middleware.ActorFrom(c), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.Listing{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/admin/listings/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	counts, err := h.Svc.Stats(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending":  counts[model.StatusPending],
		"approved": counts[model.StatusApproved],
		"rejected": counts[model.StatusRejected],
	})
}

// PUT /api/admin/listings/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	h.moderate(c, model.StatusApproved, "")
}

// RejectRequestDTO carries the reason for a rejection. The reason may be
// blank; the state machine fills in a default.
type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

// PUT /api/admin/listings/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	var req RejectRequestDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	h.moderate(c, model.StatusRejected, req.Reason)
}

// PUT /api/admin/listings/:id/pending
func (h *AdminHandler) MarkPending(c *gin.Context) {
	h.moderate(c, model.StatusPending, "")
}

func (h *AdminHandler) moderate(c *gin.Context, target model.Status, reason string) {
	listing, err := h.Svc.Moderate(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), target, reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
