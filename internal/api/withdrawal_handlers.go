package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehrbod2002/ibadmin/internal/middleware"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type WithdrawalHandler struct {
	withdrawalService service.WithdrawalService
}

func NewWithdrawalHandler(withdrawalService service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService}
}

type WithdrawalRequest struct {
	Amount         float64 `json:"amount" binding:"required"`
	Method         string  `json:"method" binding:"required"`
	AccountDetails string  `json:"account_details"`
}

type WithdrawalReviewRequest struct {
	Status        models.WithdrawalStatus `json:"status" binding:"required"`
	TransactionID string                  `json:"transaction_id"`
	AdminComment  string                  `json:"admin_comment"`
}

// @Summary Request a withdrawal
// @Description Withdraws IB commission; the amount may not exceed the available balance
// @Tags IB
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param withdrawal body WithdrawalRequest true "Withdrawal"
// @Success 201 {object} models.Withdrawal
// @Failure 400 {object} map[string]string "Invalid amount or insufficient balance"
// @Failure 404 {object} map[string]string "No IB profile"
// @Router /ib/withdrawals [post]
func (h *WithdrawalHandler) Request(c *gin.Context) {
	var body WithdrawalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	w := &models.Withdrawal{Amount: body.Amount, Method: body.Method, AccountDetails: body.AccountDetails}
	if err := h.withdrawalService.RequestWithdrawal(c.GetString(middleware.ContextUserID), w); err != nil {
		respondError(c, err, "Failed to request withdrawal")
		return
	}
	c.JSON(http.StatusCreated, w)
}

// @Summary List withdrawals
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected or completed"
// @Success 200 {array} models.Withdrawal
// @Router /admin/withdrawals [get]
func (h *WithdrawalHandler) List(c *gin.Context) {
	withdrawals, err := h.withdrawalService.GetWithdrawals(models.WithdrawalStatus(c.Query("status")))
	if err != nil {
		respondError(c, err, "Failed to retrieve withdrawals")
		return
	}
	if withdrawals == nil {
		withdrawals = []*models.Withdrawal{}
	}
	c.JSON(http.StatusOK, withdrawals)
}

// @Summary Review withdrawal
// @Description Completing a withdrawal requires a transaction id
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Withdrawal ID"
// @Param review body WithdrawalReviewRequest true "Review"
// @Success 200 {object} models.Withdrawal
// @Failure 400 {object} map[string]string "Invalid transition"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/withdrawals/{id}/status [put]
func (h *WithdrawalHandler) Review(c *gin.Context) {
	var body WithdrawalReviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	w, err := h.withdrawalService.ReviewWithdrawal(c.Param("id"), service.WithdrawalReview{
		Status:        body.Status,
		TransactionID: body.TransactionID,
		AdminComment:  body.AdminComment,
	}, actor(c))
	if err != nil {
		respondError(c, err, "Failed to review withdrawal")
		return
	}
	c.JSON(http.StatusOK, w)
}
