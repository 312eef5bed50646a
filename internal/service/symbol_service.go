package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

const uncategorized = "Other"

type SymbolService interface {
	GetSymbolsWithCategories() ([]models.SymbolCategory, error)
	UpdatePip(id string, pipValue float64, pipPosition int, actor Actor) (*models.Symbol, error)
	SyncSymbols(symbols []*models.Symbol) error
}

type symbolService struct {
	symbolRepo repository.SymbolRepository
	logService LogService
	log        *zap.Logger
}

func NewSymbolService(symbolRepo repository.SymbolRepository, logService LogService, log *zap.Logger) SymbolService {
	return &symbolService{
		symbolRepo: symbolRepo,
		logService: logService,
		log:        log,
	}
}

// GetSymbolsWithCategories groups symbols by category, categories sorted by
// name and symbols by ticker.
func (s *symbolService) GetSymbolsWithCategories() ([]models.SymbolCategory, error) {
	symbols, err := s.symbolRepo.GetAllSymbols()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]*models.Symbol)
	for _, sym := range symbols {
		category := strings.TrimSpace(sym.Category)
		if category == "" {
			category = uncategorized
		}
		byCategory[category] = append(byCategory[category], sym)
	}

	categories := make([]models.SymbolCategory, 0, len(byCategory))
	for name, syms := range byCategory {
		sort.Slice(syms, func(i, j int) bool { return syms[i].Symbol < syms[j].Symbol })
		categories = append(categories, models.SymbolCategory{Category: name, Symbols: syms})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })
	return categories, nil
}

func (s *symbolService) UpdatePip(id string, pipValue float64, pipPosition int, actor Actor) (*models.Symbol, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if pipValue <= 0 {
		return nil, fmt.Errorf("%w: pip_value must be positive", ErrInvalidInput)
	}
	if pipPosition < 0 {
		return nil, fmt.Errorf("%w: pip_position must not be negative", ErrInvalidInput)
	}

	err = s.symbolRepo.UpdateSymbolPip(objID, pipValue, pipPosition)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: symbol %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionUpdateSymbolPip,
		Description: "Symbol pip settings updated",
		Metadata: map[string]interface{}{
			"symbol_id":    id,
			"pip_value":    pipValue,
			"pip_position": pipPosition,
		},
	})
	return s.symbolRepo.GetSymbolByID(objID)
}

func (s *symbolService) SyncSymbols(symbols []*models.Symbol) error {
	for _, sym := range symbols {
		if sym == nil || sym.Symbol == "" {
			continue
		}
		if err := s.symbolRepo.UpsertSymbol(sym); err != nil {
			return fmt.Errorf("upsert symbol %s: %w", sym.Symbol, err)
		}
	}
	return nil
}
