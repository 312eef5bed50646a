package service

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

// TradingGroupService keeps the last group list pushed by the MT5 bridge
// and persists it on demand.
type TradingGroupService interface {
	CacheGroups(groups []*models.TradingGroup)
	CachedGroups() []*models.TradingGroup
	SyncGroups(actor Actor) (int, error)
	GetTradingGroups() ([]*models.TradingGroup, error)
}

type tradingGroupService struct {
	groupRepo  repository.TradingGroupRepository
	logService LogService
	publisher  events.Publisher
	log        *zap.Logger

	mu       sync.RWMutex
	cached   map[string]*models.TradingGroup
	cachedAt time.Time
}

func NewTradingGroupService(
	groupRepo repository.TradingGroupRepository,
	logService LogService,
	publisher events.Publisher,
	log *zap.Logger,
) TradingGroupService {
	return &tradingGroupService{
		groupRepo:  groupRepo,
		logService: logService,
		publisher:  publisher,
		log:        log,
		cached:     make(map[string]*models.TradingGroup),
	}
}

// CacheGroups replaces the cached snapshot with copies of groups. Entries
// without a group id are ignored.
func (s *tradingGroupService) CacheGroups(groups []*models.TradingGroup) {
	next := make(map[string]*models.TradingGroup, len(groups))
	for _, g := range groups {
		if g == nil || g.GroupID == "" {
			continue
		}
		cp := *g
		next[g.GroupID] = &cp
	}

	s.mu.Lock()
	s.cached = next
	s.cachedAt = time.Now()
	s.mu.Unlock()
}

// CachedGroups returns copies; callers may modify them freely.
func (s *tradingGroupService) CachedGroups() []*models.TradingGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.TradingGroup, 0, len(s.cached))
	for _, g := range s.cached {
		cp := *g
		groups = append(groups, &cp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })
	return groups
}

func (s *tradingGroupService) SyncGroups(actor Actor) (int, error) {
	s.mu.RLock()
	cachedAt := s.cachedAt
	s.mu.RUnlock()
	if cachedAt.IsZero() {
		return 0, ErrNoBridgeData
	}

	groups := s.CachedGroups()
	now := time.Now()
	for _, g := range groups {
		g.SyncedAt = now
	}
	n, err := s.groupRepo.UpsertTradingGroups(groups)
	if err != nil {
		return 0, err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionSyncTradingGroups,
		Description: "Trading groups synced from MT5",
		Metadata: map[string]interface{}{
			"groups": n,
		},
	})
	publish(s.publisher, s.log, events.New(events.TopicGroups, "synced", "", map[string]interface{}{
		"groups": n,
	}))
	return n, nil
}

func (s *tradingGroupService) GetTradingGroups() ([]*models.TradingGroup, error) {
	return s.groupRepo.GetTradingGroups()
}
