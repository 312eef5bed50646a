package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehrbod2002/ibadmin/internal/service"
)

type CommissionHandler struct {
	commissionService service.CommissionService
}

func NewCommissionHandler(commissionService service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// @Summary Account trade history
// @Description Closed MT5 trades of an account with the commission each one earns
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "MT5 account"
// @Success 200 {array} models.TradeWithCommission
// @Router /admin/mt5-trades/history/{accountId} [get]
func (h *CommissionHandler) TradeHistory(c *gin.Context) {
	history, err := h.commissionService.TradeHistory(c.Param("accountId"))
	if err != nil {
		respondError(c, err, "Failed to retrieve trade history")
		return
	}
	c.JSON(http.StatusOK, history)
}

// @Summary Recompute IB commission
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "IB request ID"
// @Success 200 {object} models.CommissionSnapshot
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/ib-requests/{id}/sync-commission [post]
func (h *CommissionHandler) SyncCommission(c *gin.Context) {
	snapshot, err := h.commissionService.SyncCommission(c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err, "Failed to sync commission")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// @Summary Link trade history
// @Description Attaches stored trades of the IB's accounts to the IB
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "IB request ID"
// @Success 200 {object} map[string]interface{} "Linked trades"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/ib-requests/{id}/sync-trades [post]
func (h *CommissionHandler) SyncTrades(c *gin.Context) {
	n, err := h.commissionService.SyncTrades(c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err, "Failed to sync trade history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Trade history synced", "linked": n})
}

// @Summary IB commission summary
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "IB request ID"
// @Success 200 {object} models.CommissionSnapshot
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/ib-requests/{id}/commission [get]
func (h *CommissionHandler) Get(c *gin.Context) {
	snapshot, err := h.commissionService.GetCommission(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve commission")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
