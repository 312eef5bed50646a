package mt5bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type TradeRecorder interface {
	RecordTrade(trade *models.Trade) error
	RecordAccount(acct *models.TradingAccount, referralCode string) error
}

type GroupCache interface {
	CacheGroups(groups []*models.TradingGroup)
}

type SymbolSyncer interface {
	SyncSymbols(symbols []*models.Symbol) error
}

// id accepts MT5 tickets and logins sent either as numbers or strings.
type id string

func (i *id) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = id(n.String())
	return nil
}

type closedTrade struct {
	DealID           id       `json:"deal_id"`
	AccountID        id       `json:"account_id"`
	Symbol           string   `json:"symbol"`
	Volume           float64  `json:"volume"`
	Profit           float64  `json:"profit"`
	Group            string   `json:"group"`
	SpreadCommission *float64 `json:"spread_commission"`
	CloseTime        int64    `json:"close_time"`
}

type accountRow struct {
	AccountID             id       `json:"account_id"`
	Group                 string   `json:"group"`
	IBRequestID           string   `json:"ib_request_id"`
	ReferralCode          string   `json:"referral_code"`
	USDPerLot             *float64 `json:"usd_per_lot"`
	SpreadSharePercentage *float64 `json:"spread_share_percentage"`
}

type groupRow struct {
	GroupID       string  `json:"group_id"`
	Name          string  `json:"name"`
	Server        string  `json:"server"`
	Currency      string  `json:"currency"`
	MarginCall    float64 `json:"margin_call"`
	MarginStopOut float64 `json:"margin_stop_out"`
	Leverage      int     `json:"leverage"`
	IsActive      *bool   `json:"is_active"`
}

type symbolRow struct {
	Symbol       string  `json:"symbol"`
	Category     string  `json:"category"`
	ContractSize float64 `json:"contract_size"`
	Digits       int     `json:"digits"`
	PipValue     float64 `json:"pip_value"`
	PipPosition  int     `json:"pip_position"`
}

// Feed turns bridge messages into domain writes.
type Feed struct {
	trades  TradeRecorder
	groups  GroupCache
	symbols SymbolSyncer
	log     *zap.Logger
}

func NewFeed(trades TradeRecorder, groups GroupCache, symbols SymbolSyncer, log *zap.Logger) *Feed {
	return &Feed{trades: trades, groups: groups, symbols: symbols, log: log}
}

func (f *Feed) Register(s *Server) {
	s.RegisterHandler("closed_trade", f.handleClosedTrade)
	s.RegisterHandler("accounts", f.handleAccounts)
	s.RegisterHandler("groups", f.handleGroups)
	s.RegisterHandler("symbols", f.handleSymbols)
}

func (f *Feed) handleClosedTrade(msg json.RawMessage, c *Client) error {
	var t closedTrade
	if err := json.Unmarshal(msg, &t); err != nil {
		return fmt.Errorf("invalid closed_trade: %w", err)
	}

	trade := &models.Trade{
		DealID:           string(t.DealID),
		AccountID:        string(t.AccountID),
		Symbol:           t.Symbol,
		Volume:           t.Volume,
		Profit:           t.Profit,
		Group:            t.Group,
		SpreadCommission: t.SpreadCommission,
	}
	if t.CloseTime > 0 {
		trade.CloseTime = time.Unix(t.CloseTime, 0).UTC()
	}
	if err := f.trades.RecordTrade(trade); err != nil {
		return fmt.Errorf("record deal %s: %w", trade.DealID, err)
	}

	return c.Send(map[string]interface{}{
		"type":    "ack",
		"ref":     "closed_trade",
		"deal_id": trade.DealID,
	})
}

func (f *Feed) handleAccounts(msg json.RawMessage, c *Client) error {
	var body struct {
		Accounts []accountRow `json:"accounts"`
	}
	if err := json.Unmarshal(msg, &body); err != nil {
		return fmt.Errorf("invalid accounts: %w", err)
	}

	for _, a := range body.Accounts {
		acct := &models.TradingAccount{
			AccountID:             string(a.AccountID),
			IBRequestID:           a.IBRequestID,
			Group:                 a.Group,
			USDPerLot:             a.USDPerLot,
			SpreadSharePercentage: a.SpreadSharePercentage,
		}
		if err := f.trades.RecordAccount(acct, a.ReferralCode); err != nil {
			return fmt.Errorf("record account %s: %w", acct.AccountID, err)
		}
	}

	return c.Send(map[string]interface{}{
		"type":  "ack",
		"ref":   "accounts",
		"count": len(body.Accounts),
	})
}

func (f *Feed) handleGroups(msg json.RawMessage, c *Client) error {
	var body struct {
		Groups []groupRow `json:"groups"`
	}
	if err := json.Unmarshal(msg, &body); err != nil {
		return fmt.Errorf("invalid groups: %w", err)
	}

	groups := make([]*models.TradingGroup, 0, len(body.Groups))
	for _, g := range body.Groups {
		active := true
		if g.IsActive != nil {
			active = *g.IsActive
		}
		name := g.Name
		if name == "" {
			name = g.GroupID
		}
		groups = append(groups, &models.TradingGroup{
			GroupID:       g.GroupID,
			Name:          name,
			Server:        g.Server,
			Currency:      g.Currency,
			MarginCall:    g.MarginCall,
			MarginStopOut: g.MarginStopOut,
			Leverage:      g.Leverage,
			IsActive:      active,
		})
	}
	f.groups.CacheGroups(groups)
	f.log.Info("cached MT5 trading groups", zap.Int("groups", len(groups)), zap.String("client_id", c.ID))
	return nil
}

func (f *Feed) handleSymbols(msg json.RawMessage, c *Client) error {
	var body struct {
		Symbols []symbolRow `json:"symbols"`
	}
	if err := json.Unmarshal(msg, &body); err != nil {
		return fmt.Errorf("invalid symbols: %w", err)
	}

	symbols := make([]*models.Symbol, 0, len(body.Symbols))
	for _, s := range body.Symbols {
		symbols = append(symbols, &models.Symbol{
			Symbol:       s.Symbol,
			Category:     s.Category,
			ContractSize: s.ContractSize,
			Digits:       s.Digits,
			PipValue:     s.PipValue,
			PipPosition:  s.PipPosition,
			IsActive:     true,
		})
	}
	return f.symbols.SyncSymbols(symbols)
}
