package equipment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/auth"
	"SELP-backend/internal/platform/roles"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 参照は公開、変更系は admin のみ
func RegisterRoutes(r gin.IRoutes, svc *Service, authed gin.HandlerFunc) {
	h := &Handler{svc: svc}
	adminOnly := auth.RequireRole(roles.Admin)

	r.GET("/equipment", h.List)
	r.GET("/equipment/:id", h.Get)
	r.POST("/equipment", authed, adminOnly, h.Create)
	r.PUT("/equipment/:id", authed, adminOnly, h.Update)
	r.DELETE("/equipment/:id", authed, adminOnly, h.Delete)
}

// List godoc
// @Summary 機材一覧
// @Tags equipment
// @Produce json
// @Success 200 {array} EquipmentResponse
// @Router /equipment [get]
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a number"})
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a number"})
		return
	}
	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a number"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
