// Package http exposes staff authentication and management endpoints,
// plus the middleware other route groups use to gate themselves.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/shopbackoffice/internal/admin/application"
	"github.com/wyfcoding/shopbackoffice/internal/admin/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
	"github.com/wyfcoding/shopbackoffice/pkg/utils"
)

type AdminHandler struct {
	app *application.AdminApplicationService
}

func NewAdminHandler(app *application.AdminApplicationService) *AdminHandler {
	return &AdminHandler{app: app}
}

// RegisterPublicRoutes mounts the login endpoint, optionally behind a rate
// limiter so credential stuffing gets throttled.
func (h *AdminHandler) RegisterPublicRoutes(router *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	auth := router.Group("/auth")
	if loginLimiter != nil {
		auth.Use(loginLimiter)
	}
	auth.POST("/login", h.Login)
}

// RegisterRoutes mounts the authenticated staff surface; account and role
// management additionally require the manage permission.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}

	manage := router.Group("", RequirePermission(domain.PermAdminsManage))
	{
		manage.POST("/admins", h.CreateAdmin)
		manage.GET("/admins", h.ListAdmins)
		manage.DELETE("/admins/:id", h.DeleteAdmin)
		manage.POST("/roles", h.CreateRole)
		manage.GET("/roles", h.ListRoles)
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, session, err := h.app.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"expires_at":  session.ExpiresAt,
		"username":    session.Username,
		"role":        session.Role,
		"permissions": session.Permissions,
	})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	if err := h.app.Logout(c.Request.Context(), session.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me echoes the caller's session: who they are and what they may do.
func (h *AdminHandler) Me(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	c.JSON(http.StatusOK, session)
}

type CreateAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.app.CreateAdmin(c.Request.Context(), application.CreateAdminCommand{
		Username: req.Username,
		Password: req.Password,
		RoleName: req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := utils.NewPagination(page, size, 0)

	admins, total, err := h.app.ListAdmins(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"admins":     admins,
		"pagination": utils.NewPagination(p.Page, p.PageSize, total),
	})
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.app.DeleteAdmin(c.Request.Context(), uint(id)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

func (h *AdminHandler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.app.CreateRole(c.Request.Context(), application.CreateRoleCommand{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.app.ListRoles(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (h *AdminHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAdminExists), errors.Is(err, domain.ErrRoleExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRoleNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAdminNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "admin request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
