package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

type StructureService interface {
	CreateStructure(structure *models.CommissionStructure, actor Actor) error
	GetStructure(id string) (*models.CommissionStructure, error)
	GetStructures(groupID string) ([]*models.CommissionStructure, error)
	UpdateStructure(id string, structure *models.CommissionStructure, actor Actor) error
	DeleteStructure(id string, actor Actor) error

	CreateStructureSet(set *models.StructureSet, actor Actor) error
	GetStructureSet(id string) (*models.StructureSet, error)
	GetStructureSets() ([]*models.StructureSet, error)
}

type structureService struct {
	structureRepo repository.StructureRepository
	logService    LogService
	log           *zap.Logger
}

func NewStructureService(structureRepo repository.StructureRepository, logService LogService, log *zap.Logger) StructureService {
	return &structureService{
		structureRepo: structureRepo,
		logService:    logService,
		log:           log,
	}
}

func validateRates(usdPerLot, spreadShare float64) error {
	if usdPerLot < 0 {
		return fmt.Errorf("%w: usd_per_lot must not be negative", ErrInvalidInput)
	}
	if spreadShare < 0 || spreadShare > 100 {
		return fmt.Errorf("%w: spread_share_percentage must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

func validateStructure(s *models.CommissionStructure) error {
	if strings.TrimSpace(s.GroupID) == "" {
		return fmt.Errorf("%w: group_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(s.StructureName) == "" {
		return fmt.Errorf("%w: structure_name is required", ErrInvalidInput)
	}
	if s.MinDeposit < 0 || s.MinTradingVolume < 0 || s.MinActiveClients < 0 {
		return fmt.Errorf("%w: minimum requirements must not be negative", ErrInvalidInput)
	}
	return validateRates(s.USDPerLot, s.SpreadSharePercentage)
}

func (s *structureService) CreateStructure(structure *models.CommissionStructure, actor Actor) error {
	if err := validateStructure(structure); err != nil {
		return err
	}
	if err := s.structureRepo.SaveStructure(structure); err != nil {
		return err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionCreateCommissionStructure,
		Description: "Commission structure created",
		Metadata: map[string]interface{}{
			"structure_id": structure.ID.Hex(),
			"group_id":     structure.GroupID,
			"name":         structure.StructureName,
		},
	})
	return nil
}

func (s *structureService) GetStructure(id string) (*models.CommissionStructure, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	structure, err := s.structureRepo.GetStructureByID(objID)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, fmt.Errorf("%w: commission structure %s", ErrNotFound, id)
	}
	return structure, nil
}

func (s *structureService) GetStructures(groupID string) ([]*models.CommissionStructure, error) {
	return s.structureRepo.GetStructures(groupID)
}

func (s *structureService) UpdateStructure(id string, structure *models.CommissionStructure, actor Actor) error {
	existing, err := s.GetStructure(id)
	if err != nil {
		return err
	}
	if err := validateStructure(structure); err != nil {
		return err
	}

	structure.ID = existing.ID
	structure.CreatedAt = existing.CreatedAt
	if err := s.structureRepo.UpdateStructure(existing.ID, structure); err != nil {
		return err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionUpdateCommissionStructure,
		Description: "Commission structure updated",
		Metadata: map[string]interface{}{
			"structure_id":            id,
			"usd_per_lot":             structure.USDPerLot,
			"spread_share_percentage": structure.SpreadSharePercentage,
		},
	})
	return nil
}

func (s *structureService) DeleteStructure(id string, actor Actor) error {
	existing, err := s.GetStructure(id)
	if err != nil {
		return err
	}
	if err := s.structureRepo.DeleteStructure(existing.ID); err != nil {
		return err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionDeleteCommissionStructure,
		Description: "Commission structure deleted",
		Metadata: map[string]interface{}{
			"structure_id": id,
		},
	})
	return nil
}

// CreateStructureSet checks that every item references an existing
// structure of the same group.
func (s *structureService) CreateStructureSet(set *models.StructureSet, actor Actor) error {
	if strings.TrimSpace(set.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(set.Structures) == 0 {
		return fmt.Errorf("%w: a structure set needs at least one structure", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(set.Structures))
	for i := range set.Structures {
		item := &set.Structures[i]
		structure, err := s.GetStructure(item.StructureID)
		if err != nil {
			return err
		}
		if item.GroupID == "" {
			item.GroupID = structure.GroupID
		} else if item.GroupID != structure.GroupID {
			return fmt.Errorf("%w: structure %s belongs to group %s, not %s", ErrInvalidInput, item.StructureID, structure.GroupID, item.GroupID)
		}
		if item.GroupName == "" {
			item.GroupName = structure.GroupID
		}
		if seen[item.GroupID] {
			return fmt.Errorf("%w: group %s appears more than once", ErrInvalidInput, item.GroupID)
		}
		seen[item.GroupID] = true
	}

	if err := s.structureRepo.SaveStructureSet(set); err != nil {
		return err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionCreateStructureSet,
		Description: "Structure set created",
		Metadata: map[string]interface{}{
			"structure_set_id": set.ID.Hex(),
			"name":             set.Name,
			"structures":       len(set.Structures),
		},
	})
	return nil
}

func (s *structureService) GetStructureSet(id string) (*models.StructureSet, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	set, err := s.structureRepo.GetStructureSetByID(objID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: structure set %s", ErrNotFound, id)
	}
	return set, nil
}

func (s *structureService) GetStructureSets() ([]*models.StructureSet, error) {
	return s.structureRepo.GetStructureSets()
}
