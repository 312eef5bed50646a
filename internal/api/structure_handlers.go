package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type StructureHandler struct {
	structureService service.StructureService
}

func NewStructureHandler(structureService service.StructureService) *StructureHandler {
	return &StructureHandler{structureService: structureService}
}

// @Summary List commission structures
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param group_id query string false "MT5 group"
// @Success 200 {array} models.CommissionStructure
// @Router /admin/commission-structures [get]
func (h *StructureHandler) List(c *gin.Context) {
	structures, err := h.structureService.GetStructures(c.Query("group_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve commission structures")
		return
	}
	if structures == nil {
		structures = []*models.CommissionStructure{}
	}
	c.JSON(http.StatusOK, structures)
}

// @Summary Get commission structure
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Structure ID"
// @Success 200 {object} models.CommissionStructure
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/commission-structures/{id} [get]
func (h *StructureHandler) Get(c *gin.Context) {
	structure, err := h.structureService.GetStructure(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve commission structure")
		return
	}
	c.JSON(http.StatusOK, structure)
}

// @Summary Create commission structure
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param structure body models.CommissionStructure true "Structure"
// @Success 201 {object} models.CommissionStructure
// @Failure 400 {object} map[string]string "Invalid structure"
// @Router /admin/commission-structures [post]
func (h *StructureHandler) Create(c *gin.Context) {
	var structure models.CommissionStructure
	if err := c.ShouldBindJSON(&structure); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := h.structureService.CreateStructure(&structure, actor(c)); err != nil {
		respondError(c, err, "Failed to create commission structure")
		return
	}
	c.JSON(http.StatusCreated, structure)
}

// @Summary Update commission structure
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Structure ID"
// @Param structure body models.CommissionStructure true "Structure"
// @Success 200 {object} models.CommissionStructure
// @Failure 400 {object} map[string]string "Invalid structure"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/commission-structures/{id} [put]
func (h *StructureHandler) Update(c *gin.Context) {
	var structure models.CommissionStructure
	if err := c.ShouldBindJSON(&structure); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := h.structureService.UpdateStructure(c.Param("id"), &structure, actor(c)); err != nil {
		respondError(c, err, "Failed to update commission structure")
		return
	}
	c.JSON(http.StatusOK, structure)
}

// @Summary Delete commission structure
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Structure ID"
// @Success 200 {object} map[string]string "Deleted"
// @Failure 404 {object} map[string]string "Not found"
// @Router /admin/commission-structures/{id} [delete]
func (h *StructureHandler) Delete(c *gin.Context) {
	if err := h.structureService.DeleteStructure(c.Param("id"), actor(c)); err != nil {
		respondError(c, err, "Failed to delete commission structure")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Commission structure deleted"})
}
