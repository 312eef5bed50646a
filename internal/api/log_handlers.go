package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type LogHandler struct {
	logService service.LogService
}

func NewLogHandler(logService service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// @Summary Get audit logs
// @Description Admin audit trail, newest first. Filters combine.
// @Tags Logs
// @Produce json
// @Security BearerAuth
// @Param action query string false "Audit action, e.g. UpdateIBRequestStatus"
// @Param admin_id query string false "Acting admin"
// @Param ib_request_id query string false "IB profile the change concerns"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {array} models.LogEntry
// @Failure 400 {object} map[string]string "Unknown action"
// @Failure 500 {object} map[string]string "Failed to retrieve logs"
// @Router /admin/logs [get]
func (h *LogHandler) GetLogs(c *gin.Context) {
	logs, err := h.logService.GetLogs(models.LogFilter{
		Action:      models.AuditAction(c.Query("action")),
		AdminID:     c.Query("admin_id"),
		IBRequestID: c.Query("ib_request_id"),
		Page:        queryInt64(c, "page", 1),
		Limit:       queryInt64(c, "limit", 50),
	})
	if err != nil {
		respondError(c, err, "Failed to retrieve logs")
		return
	}
	if logs == nil {
		logs = []*models.LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}
