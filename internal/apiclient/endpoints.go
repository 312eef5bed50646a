package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/tokenstore"
)

type IBRequestPage struct {
	Requests []*models.IBRequest `json:"requests"`
	Total    int64               `json:"total"`
	Page     int64               `json:"page"`
	Limit    int64               `json:"limit"`
}

type StatusChange struct {
	Status                models.IBStatus `json:"status"`
	StructureSetID        string          `json:"structure_set_id,omitempty"`
	USDPerLot             *float64        `json:"usd_per_lot,omitempty"`
	SpreadSharePercentage *float64        `json:"spread_share_percentage,omitempty"`
	AdminComment          string          `json:"admin_comment,omitempty"`
}

type WithdrawalReview struct {
	Status        models.WithdrawalStatus `json:"status"`
	TransactionID string                  `json:"transaction_id,omitempty"`
	AdminComment  string                  `json:"admin_comment,omitempty"`
}

type NewWithdrawal struct {
	Amount         float64 `json:"amount"`
	Method         string  `json:"method"`
	AccountDetails string  `json:"account_details,omitempty"`
}

// Login authenticates an admin and stores the token under adminToken.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/login",
		body:   map[string]string{"username": username, "password": password},
		public: true,
	}, &out)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(tokenstore.AdminTokenKey, out.Token); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) ListIBRequests(ctx context.Context, filter models.IBRequestFilter) (*IBRequestPage, error) {
	query := map[string]string{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		query["search"] = filter.Search
	}
	if filter.Page > 0 {
		query["page"] = strconv.FormatInt(filter.Page, 10)
	}
	if filter.Limit > 0 {
		query["limit"] = strconv.FormatInt(filter.Limit, 10)
	}

	var page IBRequestPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/ib-requests", query: query}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetIBRequest(ctx context.Context, id string) (*models.IBRequest, error) {
	var req models.IBRequest
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/ib-requests/" + url.PathEscape(id)}, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) UpdateIBRequestStatus(ctx context.Context, id string, change StatusChange) (*models.IBRequest, error) {
	var req models.IBRequest
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/admin/ib-requests/" + url.PathEscape(id) + "/status",
		body:   change,
	}, &req)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) ListStructureSets(ctx context.Context) ([]*models.StructureSet, error) {
	var sets []*models.StructureSet
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/ib-requests/structure-sets"}, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *Client) CreateStructureSet(ctx context.Context, set *models.StructureSet) (*models.StructureSet, error) {
	var created models.StructureSet
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/ib-requests/structure-sets", body: set}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListCommissionStructures(ctx context.Context, groupID string) ([]*models.CommissionStructure, error) {
	var query map[string]string
	if groupID != "" {
		query = map[string]string{"group_id": groupID}
	}
	var structures []*models.CommissionStructure
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/commission-structures", query: query}, &structures); err != nil {
		return nil, err
	}
	return structures, nil
}

func (c *Client) CreateCommissionStructure(ctx context.Context, s *models.CommissionStructure) (*models.CommissionStructure, error) {
	var created models.CommissionStructure
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/commission-structures", body: s}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListTradingGroups(ctx context.Context) ([]*models.TradingGroup, error) {
	var groups []*models.TradingGroup
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/trading-groups"}, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SyncTradingGroups returns the number of groups upserted.
func (c *Client) SyncTradingGroups(ctx context.Context) (int, error) {
	var out struct {
		Synced int `json:"synced"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/admin/trading-groups/sync"}, &out); err != nil {
		return 0, err
	}
	return out.Synced, nil
}

func (c *Client) ListSymbolsWithCategories(ctx context.Context) ([]models.SymbolCategory, error) {
	var categories []models.SymbolCategory
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/symbols-with-categories"}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) UpdateSymbolPip(ctx context.Context, id string, pipValue float64, pipPosition int) (*models.Symbol, error) {
	var symbol models.Symbol
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/admin/symbols/" + url.PathEscape(id) + "/pip",
		body:   map[string]interface{}{"pip_value": pipValue, "pip_position": pipPosition},
	}, &symbol)
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}

func (c *Client) ListWithdrawals(ctx context.Context, status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	var query map[string]string
	if status != "" {
		query = map[string]string{"status": string(status)}
	}
	var withdrawals []*models.Withdrawal
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/withdrawals", query: query}, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (c *Client) UpdateWithdrawalStatus(ctx context.Context, id string, review WithdrawalReview) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/admin/withdrawals/" + url.PathEscape(id) + "/status",
		body:   review,
	}, &w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// RequestWithdrawal is the IB-side call; it authenticates with the user token.
func (c *Client) RequestWithdrawal(ctx context.Context, w NewWithdrawal) (*models.Withdrawal, error) {
	var created models.Withdrawal
	if err := c.do(ctx, request{method: http.MethodPost, path: "/ib/withdrawals", body: w}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) TradeHistory(ctx context.Context, accountID string) ([]models.TradeWithCommission, error) {
	var history []models.TradeWithCommission
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/mt5-trades/history/" + url.PathEscape(accountID)}, &history)
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) SyncCommission(ctx context.Context, ibID string) (*models.CommissionSnapshot, error) {
	var snapshot models.CommissionSnapshot
	err := c.do(ctx, request{method: http.MethodPost, path: "/admin/ib-requests/" + url.PathEscape(ibID) + "/sync-commission"}, &snapshot)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SyncTradeHistory returns how many trades were linked to the IB.
func (c *Client) SyncTradeHistory(ctx context.Context, ibID string) (int64, error) {
	var out struct {
		Linked int64 `json:"linked"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/admin/ib-requests/" + url.PathEscape(ibID) + "/sync-trades"}, &out)
	if err != nil {
		return 0, err
	}
	return out.Linked, nil
}

func (c *Client) ProfileCommission(ctx context.Context, ibID string) (*models.CommissionSnapshot, error) {
	var snapshot models.CommissionSnapshot
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/ib-requests/" + url.PathEscape(ibID) + "/commission"}, &snapshot)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/dashboard"}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Logs reads the audit trail; zero-valued filter fields are not sent.
func (c *Client) Logs(ctx context.Context, f models.LogFilter) ([]*models.LogEntry, error) {
	query := map[string]string{}
	if f.Action != "" {
		query["action"] = string(f.Action)
	}
	if f.AdminID != "" {
		query["admin_id"] = f.AdminID
	}
	if f.IBRequestID != "" {
		query["ib_request_id"] = f.IBRequestID
	}
	if f.Page > 0 {
		query["page"] = strconv.FormatInt(f.Page, 10)
	}
	if f.Limit > 0 {
		query["limit"] = strconv.FormatInt(f.Limit, 10)
	}
	var logs []*models.LogEntry
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/logs", query: query}, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
