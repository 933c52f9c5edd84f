package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"SELP-backend/internal/platform/apierr"
)

type AuthHandler struct{ svc AuthService }

// RegisterRoutes は /api/auth 配下を登録する。authed はログアウト用。
func RegisterRoutes(r gin.IRoutes, svc AuthService, authed gin.HandlerFunc) {
	h := &AuthHandler{svc: svc}
	r.POST("/login", h.Login)
	r.POST("/signup", h.Signup)
	r.POST("/logout", authed, h.Logout)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary ログイン
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

type SignupRequest struct {
	Name     string `json:"name"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	RollNo   string `json:"roll_no"`
}

// Signup godoc
// @Summary アカウント作成
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignupRequest true "new account"
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and role required"})
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		RollNo:   req.RollNo,
	})
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"message": "Account created.",
	})
}

// Logout godoc
// @Summary ログアウト（トークン失効）
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString(CtxJTIKey)
	var remaining time.Duration
	if v, ok := c.Get(CtxExpKey); ok {
		if exp, ok := v.(time.Time); ok {
			remaining = time.Until(exp)
		}
	}
	if err := h.svc.Logout(c.Request.Context(), jti, remaining); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), gin.H{"error": apierr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
