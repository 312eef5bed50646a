package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

func TestAuditTrailPerIB(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")
	other := e.approvedIB(t, "u2")
	seedTrades(t, e, ib)

	_, err := e.commissionService.SyncCommission(ib.ID.Hex(), admin)
	require.NoError(t, err)

	entries, err := e.logService.GetLogs(models.LogFilter{IBRequestID: ib.ID.Hex()})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionSyncCommission, entries[0].Action)
	assert.Equal(t, models.ActionUpdateIBRequestStatus, entries[1].Action)
	assert.Equal(t, admin.AdminID, entries[0].AdminID)
	assert.Equal(t, admin.IPAddress, entries[0].IPAddress)
	assert.NotContains(t, entries[0].Metadata, "ib_request_id")

	entries, err = e.logService.GetLogs(models.LogFilter{Action: models.ActionUpdateIBRequestStatus})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, other.ID.Hex(), entries[0].IBRequestID)
}

func TestAuditRejectsUnknownAction(t *testing.T) {
	e := newTestEnv(t)

	err := e.logService.LogAction(admin, &models.LogEntry{Action: "DropDatabase"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Empty(t, e.logs.actions())

	_, err = e.logService.GetLogs(models.LogFilter{Action: "DropDatabase"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
