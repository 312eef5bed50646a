package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/commission"
	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

type WithdrawalReview struct {
	Status        models.WithdrawalStatus
	TransactionID string
	AdminComment  string
}

type WithdrawalService interface {
	RequestWithdrawal(userID string, w *models.Withdrawal) error
	GetWithdrawals(status models.WithdrawalStatus) ([]*models.Withdrawal, error)
	ReviewWithdrawal(id string, review WithdrawalReview, actor Actor) (*models.Withdrawal, error)
}

type withdrawalService struct {
	withdrawalRepo    repository.WithdrawalRepository
	ibService         IBRequestService
	commissionService CommissionService
	logService        LogService
	publisher         events.Publisher
	log               *zap.Logger

	// ibLocks serializes the balance check and insert per IB profile.
	ibLocks sync.Map
}

func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	ibService IBRequestService,
	commissionService CommissionService,
	logService LogService,
	publisher events.Publisher,
	log *zap.Logger,
) WithdrawalService {
	return &withdrawalService{
		withdrawalRepo:    withdrawalRepo,
		ibService:         ibService,
		commissionService: commissionService,
		logService:        logService,
		publisher:         publisher,
		log:               log,
	}
}

func (s *withdrawalService) RequestWithdrawal(userID string, w *models.Withdrawal) error {
	if w.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(w.Method) == "" {
		return fmt.Errorf("%w: method is required", ErrInvalidInput)
	}

	ib, err := s.ibService.GetIBRequestByUserID(userID)
	if err != nil {
		return err
	}
	if ib.Status != models.IBStatusApproved {
		return fmt.Errorf("%w: IB profile is %s", ErrInvalidInput, ib.Status)
	}

	mu := s.lockFor(ib.ID.Hex())
	mu.Lock()
	defer mu.Unlock()

	available, err := s.commissionService.AvailableBalance(ib.ID.Hex())
	if err != nil {
		return err
	}
	if commission.FromFloat(w.Amount).GreaterThan(available) {
		return fmt.Errorf("%w: requested %.2f, available %s", ErrInsufficientBalance, w.Amount, commission.Round2(available).StringFixed(2))
	}

	w.IBRequestID = ib.ID.Hex()
	w.Status = models.WithdrawalStatusPending
	w.TransactionID = ""
	w.ProcessedAt = nil
	if err := s.withdrawalRepo.SaveWithdrawal(w); err != nil {
		return err
	}

	audit(s.logService, s.log, Actor{}, &models.LogEntry{
		Action:      models.ActionCreateWithdrawal,
		IBRequestID: w.IBRequestID,
		Description: "IB withdrawal requested",
		Metadata: map[string]interface{}{
			"withdrawal_id": w.ID.Hex(),
			"amount":        w.Amount,
			"method":        w.Method,
		},
	})
	publish(s.publisher, s.log, events.New(events.TopicWithdrawals, "created", w.IBRequestID, w))
	return nil
}

func (s *withdrawalService) lockFor(ibID string) *sync.Mutex {
	mu, _ := s.ibLocks.LoadOrStore(ibID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *withdrawalService) GetWithdrawals(status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	return s.withdrawalRepo.GetWithdrawals(status)
}

func (s *withdrawalService) ReviewWithdrawal(id string, review WithdrawalReview, actor Actor) (*models.Withdrawal, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	w, err := s.withdrawalRepo.GetWithdrawalByID(objID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: withdrawal %s", ErrNotFound, id)
	}
	if !w.Status.CanTransition(review.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, review.Status)
	}
	review.TransactionID = strings.TrimSpace(review.TransactionID)
	if review.Status == models.WithdrawalStatusCompleted && review.TransactionID == "" {
		return nil, fmt.Errorf("%w: transaction_id is required to complete a withdrawal", ErrInvalidInput)
	}

	previous := w.Status
	now := time.Now()
	w.Status = review.Status
	w.ProcessedAt = &now
	if review.TransactionID != "" {
		w.TransactionID = review.TransactionID
	}
	if review.AdminComment != "" {
		w.AdminComment = review.AdminComment
	}
	if err := s.withdrawalRepo.UpdateWithdrawal(w); err != nil {
		return nil, err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionReviewWithdrawal,
		IBRequestID: w.IBRequestID,
		Description: "Withdrawal reviewed",
		Metadata: map[string]interface{}{
			"withdrawal_id":  id,
			"from":           previous,
			"to":             review.Status,
			"transaction_id": w.TransactionID,
		},
	})
	publish(s.publisher, s.log, events.New(events.TopicWithdrawals, string(review.Status), w.IBRequestID, w))
	return w, nil
}
