package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
)

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.LogEntry
}

func (r *fakeLogRepo) SaveLog(l *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = primitive.NewObjectID()
	l.Timestamp = time.Now()
	r.entries = append(r.entries, l)
	return nil
}

func (r *fakeLogRepo) GetLogs(f models.LogFilter) ([]*models.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.AdminID != "" && e.AdminID != f.AdminID {
			continue
		}
		if f.IBRequestID != "" && e.IBRequestID != f.IBRequestID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLogRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, string(e.Action))
	}
	return out
}

type fakeIBRepo struct {
	reqs map[primitive.ObjectID]*models.IBRequest
}

func newFakeIBRepo() *fakeIBRepo {
	return &fakeIBRepo{reqs: make(map[primitive.ObjectID]*models.IBRequest)}
}

func (r *fakeIBRepo) SaveIBRequest(req *models.IBRequest) error {
	req.ID = primitive.NewObjectID()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	cp := *req
	r.reqs[req.ID] = &cp
	return nil
}

func (r *fakeIBRepo) GetIBRequestByID(id primitive.ObjectID) (*models.IBRequest, error) {
	req, ok := r.reqs[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeIBRepo) find(match func(*models.IBRequest) bool) (*models.IBRequest, error) {
	for _, req := range r.reqs {
		if match(req) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeIBRepo) GetIBRequestByReferralCode(code string) (*models.IBRequest, error) {
	return r.find(func(req *models.IBRequest) bool { return req.ReferralCode == code })
}

func (r *fakeIBRepo) GetIBRequestByUserID(userID string) (*models.IBRequest, error) {
	var best *models.IBRequest
	for _, req := range r.reqs {
		if req.UserID != userID {
			continue
		}
		if best == nil || preferRequest(req, best) {
			best = req
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

// preferRequest orders a user's requests like the Mongo lookup: non-rejected
// first, then newest.
func preferRequest(a, b *models.IBRequest) bool {
	aRejected, bRejected := a.Status == models.IBStatusRejected, b.Status == models.IBStatusRejected
	if aRejected != bRejected {
		return bRejected
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func (r *fakeIBRepo) GetIBRequests(f models.IBRequestFilter) ([]*models.IBRequest, int64, error) {
	var out []*models.IBRequest
	for _, req := range r.reqs {
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(req.FullName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (r *fakeIBRepo) GetIBRequestsByStatus(status models.IBStatus) ([]*models.IBRequest, error) {
	out, _, err := r.GetIBRequests(models.IBRequestFilter{Status: status})
	return out, err
}

func (r *fakeIBRepo) UpdateIBRequest(req *models.IBRequest) error {
	if _, ok := r.reqs[req.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *req
	cp.UpdatedAt = time.Now()
	r.reqs[req.ID] = &cp
	return nil
}

func (r *fakeIBRepo) CountByStatus() (map[models.IBStatus]int64, error) {
	counts := make(map[models.IBStatus]int64)
	for _, req := range r.reqs {
		counts[req.Status]++
	}
	return counts, nil
}

type fakeStructureRepo struct {
	structures map[primitive.ObjectID]*models.CommissionStructure
	sets       map[primitive.ObjectID]*models.StructureSet
}

func newFakeStructureRepo() *fakeStructureRepo {
	return &fakeStructureRepo{
		structures: make(map[primitive.ObjectID]*models.CommissionStructure),
		sets:       make(map[primitive.ObjectID]*models.StructureSet),
	}
}

func (r *fakeStructureRepo) SaveStructure(s *models.CommissionStructure) error {
	s.ID = primitive.NewObjectID()
	r.structures[s.ID] = s
	return nil
}

func (r *fakeStructureRepo) GetStructureByID(id primitive.ObjectID) (*models.CommissionStructure, error) {
	return r.structures[id], nil
}

func (r *fakeStructureRepo) GetStructures(groupID string) ([]*models.CommissionStructure, error) {
	var out []*models.CommissionStructure
	for _, s := range r.structures {
		if groupID == "" || s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStructureRepo) UpdateStructure(id primitive.ObjectID, s *models.CommissionStructure) error {
	if _, ok := r.structures[id]; !ok {
		return mongo.ErrNoDocuments
	}
	r.structures[id] = s
	return nil
}

func (r *fakeStructureRepo) DeleteStructure(id primitive.ObjectID) error {
	delete(r.structures, id)
	return nil
}

func (r *fakeStructureRepo) SaveStructureSet(set *models.StructureSet) error {
	set.ID = primitive.NewObjectID()
	r.sets[set.ID] = set
	return nil
}

func (r *fakeStructureRepo) GetStructureSetByID(id primitive.ObjectID) (*models.StructureSet, error) {
	return r.sets[id], nil
}

func (r *fakeStructureRepo) GetStructureSets() ([]*models.StructureSet, error) {
	var out []*models.StructureSet
	for _, s := range r.sets {
		out = append(out, s)
	}
	return out, nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*models.TradingGroup
}

func (r *fakeGroupRepo) UpsertTradingGroups(groups []*models.TradingGroup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups == nil {
		r.groups = make(map[string]*models.TradingGroup)
	}
	for _, g := range groups {
		r.groups[g.GroupID] = g
	}
	return len(groups), nil
}

func (r *fakeGroupRepo) GetTradingGroups() ([]*models.TradingGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TradingGroup
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

func (r *fakeGroupRepo) GetTradingGroup(groupID string) (*models.TradingGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups[groupID], nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.TradingAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.TradingAccount)}
}

func (r *fakeAccountRepo) UpsertTradingAccount(acct *models.TradingAccount) error {
	r.accounts[acct.AccountID] = acct
	return nil
}

func (r *fakeAccountRepo) GetTradingAccount(accountID string) (*models.TradingAccount, error) {
	return r.accounts[accountID], nil
}

func (r *fakeAccountRepo) GetTradingAccountsByIB(ibRequestID string) ([]*models.TradingAccount, error) {
	var out []*models.TradingAccount
	for _, a := range r.accounts {
		if a.IBRequestID == ibRequestID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSymbolRepo struct {
	symbols map[primitive.ObjectID]*models.Symbol
}

func newFakeSymbolRepo() *fakeSymbolRepo {
	return &fakeSymbolRepo{symbols: make(map[primitive.ObjectID]*models.Symbol)}
}

func (r *fakeSymbolRepo) SaveSymbol(s *models.Symbol) error {
	s.ID = primitive.NewObjectID()
	r.symbols[s.ID] = s
	return nil
}

func (r *fakeSymbolRepo) UpsertSymbol(s *models.Symbol) error {
	for _, existing := range r.symbols {
		if existing.Symbol == s.Symbol {
			existing.Category = s.Category
			existing.ContractSize = s.ContractSize
			existing.Digits = s.Digits
			existing.IsActive = s.IsActive
			return nil
		}
	}
	return r.SaveSymbol(s)
}

func (r *fakeSymbolRepo) GetSymbolByID(id primitive.ObjectID) (*models.Symbol, error) {
	return r.symbols[id], nil
}

func (r *fakeSymbolRepo) GetAllSymbols() ([]*models.Symbol, error) {
	var out []*models.Symbol
	for _, s := range r.symbols {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSymbolRepo) UpdateSymbolPip(id primitive.ObjectID, pipValue float64, pipPosition int) error {
	s, ok := r.symbols[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.PipValue = pipValue
	s.PipPosition = pipPosition
	return nil
}

type fakeTradeRepo struct {
	trades map[string]*models.Trade
}

func newFakeTradeRepo() *fakeTradeRepo {
	return &fakeTradeRepo{trades: make(map[string]*models.Trade)}
}

func (r *fakeTradeRepo) UpsertTrade(t *models.Trade) error {
	r.trades[t.DealID] = t
	return nil
}

func (r *fakeTradeRepo) filter(match func(*models.Trade) bool) []*models.Trade {
	var out []*models.Trade
	for _, t := range r.trades {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DealID < out[j].DealID })
	return out
}

func (r *fakeTradeRepo) GetTradesByAccountID(accountID string) ([]*models.Trade, error) {
	return r.filter(func(t *models.Trade) bool { return t.AccountID == accountID }), nil
}

func (r *fakeTradeRepo) GetTradesByIB(ibRequestID string) ([]*models.Trade, error) {
	return r.filter(func(t *models.Trade) bool { return t.IBRequestID == ibRequestID }), nil
}

func (r *fakeTradeRepo) AssignTradesToIB(accountIDs []string, ibRequestID string) (int64, error) {
	var n int64
	for _, t := range r.trades {
		for _, id := range accountIDs {
			if t.AccountID == id && t.IBRequestID != ibRequestID {
				t.IBRequestID = ibRequestID
				n++
			}
		}
	}
	return n, nil
}

type fakeWithdrawalRepo struct {
	mu          sync.Mutex
	withdrawals map[primitive.ObjectID]*models.Withdrawal
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{withdrawals: make(map[primitive.ObjectID]*models.Withdrawal)}
}

func (r *fakeWithdrawalRepo) SaveWithdrawal(w *models.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now()
	cp := *w
	r.withdrawals[w.ID] = &cp
	return nil
}

func (r *fakeWithdrawalRepo) GetWithdrawalByID(id primitive.ObjectID) (*models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWithdrawalRepo) GetWithdrawals(status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range r.withdrawals {
		if status == "" || w.Status == status {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) GetWithdrawalsByIB(ibRequestID string) ([]*models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range r.withdrawals {
		if w.IBRequestID == ibRequestID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) UpdateWithdrawal(w *models.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.withdrawals[w.ID] = &cp
	return nil
}

type fakeCommissionRepo struct {
	snapshots map[string]*models.CommissionSnapshot
}

func newFakeCommissionRepo() *fakeCommissionRepo {
	return &fakeCommissionRepo{snapshots: make(map[string]*models.CommissionSnapshot)}
}

func (r *fakeCommissionRepo) SaveSnapshot(s *models.CommissionSnapshot) error {
	r.snapshots[s.IBRequestID] = s
	return nil
}

func (r *fakeCommissionRepo) GetSnapshot(ibRequestID string) (*models.CommissionSnapshot, error) {
	return r.snapshots[ibRequestID], nil
}

func (r *fakeCommissionRepo) GetSnapshots() ([]*models.CommissionSnapshot, error) {
	var out []*models.CommissionSnapshot
	for _, s := range r.snapshots {
		out = append(out, s)
	}
	return out, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e)
	return nil
}

func (p *recordingPublisher) types(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.got {
		if e.Topic == topic {
			out = append(out, e.Type)
		}
	}
	return out
}

type fakeAdminRepo struct {
	admins []*models.AdminAccount
}

func (r *fakeAdminRepo) seed(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	return r.SaveAdmin(&models.AdminAccount{Username: username, Password: string(hash), Role: models.RoleAdmin})
}

func (r *fakeAdminRepo) SaveAdmin(a *models.AdminAccount) error {
	a.ID = primitive.NewObjectID()
	r.admins = append(r.admins, a)
	return nil
}

func (r *fakeAdminRepo) GetAdminByID(id primitive.ObjectID) (*models.AdminAccount, error) {
	for _, a := range r.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAdminRepo) GetAdminByUsername(username string) (*models.AdminAccount, error) {
	for _, a := range r.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}
