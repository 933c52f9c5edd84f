package requests

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/auth"
	"SELP-backend/internal/platform/roles"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 全ルート認証必須。承認/却下は admin/staff のみ。
func RegisterRoutes(r gin.IRoutes, svc *Service, authed gin.HandlerFunc) {
	h := &Handler{svc: svc}
	staffOnly := auth.RequireRole(roles.Admin, roles.Staff)

	r.POST("/requests", authed, h.Create)
	r.GET("/requests", authed, h.List)
	r.GET("/requests/:id", authed, h.Get)
	r.PUT("/requests/:id/approve", authed, staffOnly, h.Approve)
	r.PUT("/requests/:id/reject", authed, staffOnly, h.Reject)
	r.PUT("/requests/:id/return", authed, h.Return)
}

// Create godoc
// @Summary 借用申請の登録
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestInput true "request"
// @Success 200 {object} CreateResponse
// @Router /requests [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json or missing required fields"})
		return
	}
	res, err := h.svc.Create(c.Request.Context(), auth.ActorFrom(c), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

// List godoc
// @Summary 申請一覧（admin/staff は全件、student は自分の分のみ）
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RequestResponse
// @Router /requests [get]
func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), auth.ActorFrom(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), auth.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Approve(c *gin.Context) {
	res, err := h.svc.Approve(c.Request.Context(), auth.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Reject(c *gin.Context) {
	res, err := h.svc.Reject(c.Request.Context(), auth.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Return(c *gin.Context) {
	res, err := h.svc.Return(c.Request.Context(), auth.ActorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}
