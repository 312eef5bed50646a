package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/config"
	"github.com/mehrbod2002/ibadmin/internal/middleware"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type AdminHandler struct {
	adminService service.AdminService
	logService   service.LogService
	cfg          *config.Config
	log          *zap.Logger
}

func NewAdminHandler(adminService service.AdminService, logService service.LogService, cfg *config.Config, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logService:   logService,
		cfg:          cfg,
		log:          log,
	}
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Admin login
// @Description Authenticates an admin user and returns a JWT token
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body AdminLoginRequest true "Admin credentials"
// @Success 200 {object} map[string]string "JWT token"
// @Failure 400 {object} map[string]string "Invalid JSON"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Server error"
// @Router /admin/login [post]
func (h *AdminHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	admin, err := h.adminService.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(c, err, "Invalid credentials")
		return
	}

	token, err := middleware.GenerateAdminJWT(admin.ID.Hex(), h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	actor := service.Actor{AdminID: admin.ID.Hex(), IPAddress: c.ClientIP()}
	if err := h.logService.LogAction(actor, &models.LogEntry{Action: models.ActionAdminLogin, Description: "Admin logged in"}); err != nil {
		h.log.Warn("failed to write audit log", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Login successful",
		"token":  token,
	})
}
