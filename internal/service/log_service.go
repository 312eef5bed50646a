package service

import (
	"fmt"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

// LogService writes and reads the admin audit trail.
type LogService interface {
	LogAction(actor Actor, entry *models.LogEntry) error
	GetLogs(filter models.LogFilter) ([]*models.LogEntry, error)
}

type logService struct {
	logRepo repository.LogRepository
}

func NewLogService(logRepo repository.LogRepository) LogService {
	return &logService{logRepo: logRepo}
}

func (s *logService) LogAction(actor Actor, entry *models.LogEntry) error {
	if !entry.Action.Valid() {
		return fmt.Errorf("%w: unknown audit action %q", ErrInvalidInput, entry.Action)
	}
	entry.AdminID = actor.AdminID
	entry.IPAddress = actor.IPAddress
	return s.logRepo.SaveLog(entry)
}

func (s *logService) GetLogs(filter models.LogFilter) ([]*models.LogEntry, error) {
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown audit action %q", ErrInvalidInput, filter.Action)
	}
	return s.logRepo.GetLogs(filter)
}
