package contributors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SELP-backend/internal/platform/apierr"
	"SELP-backend/internal/platform/auth"
	"SELP-backend/internal/platform/roles"
)

type Handler struct{ svc *Service }

// RegisterRoutes: 一覧は公開、置換は admin/staff のみ
func RegisterRoutes(r gin.IRoutes, svc *Service, authed gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.GET("/contributors", h.List)
	r.PUT("/contributors", authed, auth.RequireRole(roles.Admin, roles.Staff), h.Replace)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	if list == nil {
		list = []Contributor{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Replace(c *gin.Context) {
	var list []Contributor
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, err := h.svc.Replace(c.Request.Context(), list)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	if updated == nil {
		updated = []Contributor{}
	}
	c.JSON(http.StatusOK, updated)
}
