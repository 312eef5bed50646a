package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type TradingGroupHandler struct {
	groupService service.TradingGroupService
}

func NewTradingGroupHandler(groupService service.TradingGroupService) *TradingGroupHandler {
	return &TradingGroupHandler{groupService: groupService}
}

// @Summary List trading groups
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TradingGroup
// @Router /admin/trading-groups [get]
func (h *TradingGroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.GetTradingGroups()
	if err != nil {
		respondError(c, err, "Failed to retrieve trading groups")
		return
	}
	if groups == nil {
		groups = []*models.TradingGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

// @Summary Sync trading groups
// @Description Stores the group list last received from the MT5 bridge
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Synced count"
// @Failure 503 {object} map[string]string "Bridge has not reported groups"
// @Router /admin/trading-groups/sync [post]
func (h *TradingGroupHandler) Sync(c *gin.Context) {
	n, err := h.groupService.SyncGroups(actor(c))
	if err != nil {
		respondError(c, err, "Failed to sync trading groups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Trading groups synced", "synced": n})
}

type SymbolHandler struct {
	symbolService service.SymbolService
}

func NewSymbolHandler(symbolService service.SymbolService) *SymbolHandler {
	return &SymbolHandler{symbolService: symbolService}
}

type PipUpdateRequest struct {
	PipValue    float64 `json:"pip_value" binding:"required"`
	PipPosition int     `json:"pip_position"`
}

// @Summary Symbols by category
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SymbolCategory
// @Router /admin/symbols-with-categories [get]
func (h *SymbolHandler) ListWithCategories(c *gin.Context) {
	categories, err := h.symbolService.GetSymbolsWithCategories()
	if err != nil {
		respondError(c, err, "Failed to retrieve symbols")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// @Summary Update symbol pip settings
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Symbol ID"
// @Param pip body PipUpdateRequest true "Pip settings"
// @Success 200 {object} models.Symbol
// @Failure 400 {object} map[string]string "Invalid pip settings"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/symbols/{id}/pip [put]
func (h *SymbolHandler) UpdatePip(c *gin.Context) {
	var body PipUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	symbol, err := h.symbolService.UpdatePip(c.Param("id"), body.PipValue, body.PipPosition, actor(c))
	if err != nil {
		respondError(c, err, "Failed to update pip settings")
		return
	}
	c.JSON(http.StatusOK, symbol)
}

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Dashboard
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.dashboardService.GetDashboard()
	if err != nil {
		respondError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}
