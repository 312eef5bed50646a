package service

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

const (
	referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referralLength   = 8
	referralAttempts = 5
)

// StatusUpdate is an admin decision on an IB request. Approval needs either
// a structure set or explicit profile rates unless the request already has
// group assignments (re-approval after a ban).
type StatusUpdate struct {
	Status                models.IBStatus
	StructureSetID        string
	USDPerLot             *float64
	SpreadSharePercentage *float64
	AdminComment          string
}

type IBRequestService interface {
	CreateIBRequest(req *models.IBRequest) error
	GetIBRequest(id string) (*models.IBRequest, error)
	GetIBRequestByUserID(userID string) (*models.IBRequest, error)
	GetIBRequests(filter models.IBRequestFilter) ([]*models.IBRequest, int64, error)
	UpdateStatus(id string, update StatusUpdate, actor Actor) (*models.IBRequest, error)
}

type ibRequestService struct {
	ibRepo           repository.IBRequestRepository
	structureService StructureService
	logService       LogService
	publisher        events.Publisher
	log              *zap.Logger
	newCode          func() string
}

func NewIBRequestService(
	ibRepo repository.IBRequestRepository,
	structureService StructureService,
	logService LogService,
	publisher events.Publisher,
	log *zap.Logger,
) (IBRequestService, error) {
	newCode, err := nanoid.CustomASCII(referralAlphabet, referralLength)
	if err != nil {
		return nil, err
	}
	return &ibRequestService{
		ibRepo:           ibRepo,
		structureService: structureService,
		logService:       logService,
		publisher:        publisher,
		log:              log,
		newCode:          newCode,
	}, nil
}

func (s *ibRequestService) CreateIBRequest(req *models.IBRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	if req.UserID != "" {
		existing, err := s.ibRepo.GetIBRequestByUserID(req.UserID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status != models.IBStatusRejected {
			return fmt.Errorf("%w: user already has an IB request", ErrInvalidInput)
		}
	}

	if req.ReferredBy != "" {
		parent, err := s.ibRepo.GetIBRequestByReferralCode(req.ReferredBy)
		if err != nil {
			return err
		}
		if parent == nil || parent.Status != models.IBStatusApproved {
			return fmt.Errorf("%w: unknown referral code %q", ErrInvalidInput, req.ReferredBy)
		}
	}

	req.Status = models.IBStatusPending
	req.ReferralCode = ""
	req.GroupAssignments = nil
	req.ApprovedAt = nil
	if err := s.ibRepo.SaveIBRequest(req); err != nil {
		return err
	}

	publish(s.publisher, s.log, events.New(events.TopicIBStatus, "created", req.ID.Hex(), req))
	return nil
}

func (s *ibRequestService) GetIBRequest(id string) (*models.IBRequest, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req, err := s.ibRepo.GetIBRequestByID(objID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: ib request %s", ErrNotFound, id)
	}
	return req, nil
}

func (s *ibRequestService) GetIBRequestByUserID(userID string) (*models.IBRequest, error) {
	req, err := s.ibRepo.GetIBRequestByUserID(userID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: no ib request for user %s", ErrNotFound, userID)
	}
	return req, nil
}

func (s *ibRequestService) GetIBRequests(filter models.IBRequestFilter) ([]*models.IBRequest, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return s.ibRepo.GetIBRequests(filter)
}

func (s *ibRequestService) UpdateStatus(id string, update StatusUpdate, actor Actor) (*models.IBRequest, error) {
	if !update.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, update.Status)
	}

	req, err := s.GetIBRequest(id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(update.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, update.Status)
	}

	previous := req.Status
	if update.Status == models.IBStatusApproved {
		if err := s.applyApproval(req, update); err != nil {
			return nil, err
		}
	}

	req.Status = update.Status
	if update.AdminComment != "" {
		req.AdminComment = update.AdminComment
	}
	if err := s.ibRepo.UpdateIBRequest(req); err != nil {
		return nil, err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionUpdateIBRequestStatus,
		IBRequestID: id,
		Description: "IB request status changed",
		Metadata: map[string]interface{}{
			"from":             previous,
			"to":               update.Status,
			"structure_set_id": req.StructureSetID,
			"admin_comment":    update.AdminComment,
		},
	})
	publish(s.publisher, s.log, events.New(events.TopicIBStatus, string(update.Status), id, map[string]interface{}{
		"from":          previous,
		"to":            update.Status,
		"referral_code": req.ReferralCode,
	}))
	return req, nil
}

func (s *ibRequestService) applyApproval(req *models.IBRequest, update StatusUpdate) error {
	explicit := update.USDPerLot != nil || update.SpreadSharePercentage != nil
	if update.StructureSetID == "" && !explicit && len(req.GroupAssignments) == 0 {
		return fmt.Errorf("%w: approval requires a structure set or explicit rates", ErrInvalidInput)
	}

	if update.StructureSetID != "" {
		assignments, err := s.assignmentsFromSet(update.StructureSetID)
		if err != nil {
			return err
		}
		req.StructureSetID = update.StructureSetID
		req.GroupAssignments = assignments
		// Profile defaults follow the first group unless rates are given.
		req.USDPerLot = assignments[0].USDPerLot
		req.SpreadSharePercentage = assignments[0].SpreadSharePercentage
	}

	if update.USDPerLot != nil {
		req.USDPerLot = *update.USDPerLot
	}
	if update.SpreadSharePercentage != nil {
		req.SpreadSharePercentage = *update.SpreadSharePercentage
	}
	if err := validateRates(req.USDPerLot, req.SpreadSharePercentage); err != nil {
		return err
	}

	if req.ReferralCode == "" {
		code, err := s.uniqueReferralCode()
		if err != nil {
			return err
		}
		req.ReferralCode = code
	}

	now := time.Now()
	req.ApprovedAt = &now
	return nil
}

func (s *ibRequestService) assignmentsFromSet(setID string) ([]models.GroupAssignment, error) {
	set, err := s.structureService.GetStructureSet(setID)
	if err != nil {
		return nil, err
	}
	if len(set.Structures) == 0 {
		return nil, fmt.Errorf("%w: structure set %s is empty", ErrInvalidInput, setID)
	}

	assignments := make([]models.GroupAssignment, 0, len(set.Structures))
	for _, item := range set.Structures {
		structure, err := s.structureService.GetStructure(item.StructureID)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, models.GroupAssignment{
			GroupID:               item.GroupID,
			GroupName:             item.GroupName,
			StructureID:           item.StructureID,
			StructureName:         structure.StructureName,
			USDPerLot:             structure.USDPerLot,
			SpreadSharePercentage: structure.SpreadSharePercentage,
		})
	}
	return assignments, nil
}

func (s *ibRequestService) uniqueReferralCode() (string, error) {
	for i := 0; i < referralAttempts; i++ {
		code := s.newCode()
		existing, err := s.ibRepo.GetIBRequestByReferralCode(code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique referral code after %d attempts", referralAttempts)
}
