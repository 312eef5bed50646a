package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehrbod2002/ibadmin/internal/middleware"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type IBRequestHandler struct {
	ibService        service.IBRequestService
	structureService service.StructureService
}

func NewIBRequestHandler(ibService service.IBRequestService, structureService service.StructureService) *IBRequestHandler {
	return &IBRequestHandler{ibService: ibService, structureService: structureService}
}

type IBApplicationRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone"`
	IBType     string `json:"ib_type"`
	ReferredBy string `json:"referred_by"`
}

type IBRequestList struct {
	Requests []*models.IBRequest `json:"requests"`
	Total    int64               `json:"total"`
	Page     int64               `json:"page"`
	Limit    int64               `json:"limit"`
}

type IBStatusRequest struct {
	Status                models.IBStatus `json:"status" binding:"required"`
	StructureSetID        string          `json:"structure_set_id"`
	USDPerLot             *float64        `json:"usd_per_lot"`
	SpreadSharePercentage *float64        `json:"spread_share_percentage"`
	AdminComment          string          `json:"admin_comment"`
}

// @Summary Apply as IB
// @Description Submits a new IB application in pending status. A user bearer token, when sent, links the application to that user.
// @Tags IB
// @Accept json
// @Produce json
// @Param application body IBApplicationRequest true "Application"
// @Success 201 {object} models.IBRequest
// @Failure 400 {object} map[string]string "Invalid application"
// @Router /ib-requests [post]
func (h *IBRequestHandler) Apply(c *gin.Context) {
	var body IBApplicationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	req := &models.IBRequest{
		UserID:     c.GetString(middleware.ContextUserID),
		FullName:   body.FullName,
		Email:      body.Email,
		Phone:      body.Phone,
		IBType:     body.IBType,
		ReferredBy: body.ReferredBy,
	}
	if err := h.ibService.CreateIBRequest(req); err != nil {
		respondError(c, err, "Failed to submit IB application")
		return
	}
	c.JSON(http.StatusCreated, req)
}

// @Summary List IB requests
// @Description Paginated IB requests, optionally filtered by status and a name/email/referral search
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected or banned"
// @Param search query string false "Search text"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} IBRequestList
// @Failure 400 {object} map[string]string "Invalid status"
// @Router /admin/ib-requests [get]
func (h *IBRequestHandler) List(c *gin.Context) {
	filter := models.IBRequestFilter{
		Status: models.IBStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   queryInt64(c, "page", 1),
		Limit:  queryInt64(c, "limit", 20),
	}
	reqs, total, err := h.ibService.GetIBRequests(filter)
	if err != nil {
		respondError(c, err, "Failed to retrieve IB requests")
		return
	}
	if reqs == nil {
		reqs = []*models.IBRequest{}
	}
	c.JSON(http.StatusOK, IBRequestList{Requests: reqs, Total: total, Page: filter.Page, Limit: filter.Limit})
}

// @Summary Get IB request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "IB request ID"
// @Success 200 {object} models.IBRequest
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/ib-requests/{id} [get]
func (h *IBRequestHandler) Get(c *gin.Context) {
	req, err := h.ibService.GetIBRequest(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve IB request")
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary Change IB request status
// @Description Approval needs a structure set or explicit rates, and assigns a referral code
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "IB request ID"
// @Param decision body IBStatusRequest true "Status decision"
// @Success 200 {object} models.IBRequest
// @Failure 400 {object} map[string]string "Invalid transition or input"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/ib-requests/{id}/status [put]
func (h *IBRequestHandler) UpdateStatus(c *gin.Context) {
	var body IBStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	req, err := h.ibService.UpdateStatus(c.Param("id"), service.StatusUpdate{
		Status:                body.Status,
		StructureSetID:        body.StructureSetID,
		USDPerLot:             body.USDPerLot,
		SpreadSharePercentage: body.SpreadSharePercentage,
		AdminComment:          body.AdminComment,
	}, actor(c))
	if err != nil {
		respondError(c, err, "Failed to update IB request status")
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary List structure sets
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.StructureSet
// @Router /admin/ib-requests/structure-sets [get]
func (h *IBRequestHandler) ListStructureSets(c *gin.Context) {
	sets, err := h.structureService.GetStructureSets()
	if err != nil {
		respondError(c, err, "Failed to retrieve structure sets")
		return
	}
	if sets == nil {
		sets = []*models.StructureSet{}
	}
	c.JSON(http.StatusOK, sets)
}

// @Summary Create structure set
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param set body models.StructureSet true "Structure set"
// @Success 201 {object} models.StructureSet
// @Failure 400 {object} map[string]string "Invalid structure set"
// @Router /admin/ib-requests/structure-sets [post]
func (h *IBRequestHandler) CreateStructureSet(c *gin.Context) {
	var set models.StructureSet
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := h.structureService.CreateStructureSet(&set, actor(c)); err != nil {
		respondError(c, err, "Failed to create structure set")
		return
	}
	c.JSON(http.StatusCreated, set)
}
