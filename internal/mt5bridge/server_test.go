package mt5bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type recorder struct {
	mu       sync.Mutex
	trades   []*models.Trade
	accounts []*models.TradingAccount
	codes    []string
	groups   []*models.TradingGroup
	symbols  []*models.Symbol
}

func (r *recorder) RecordTrade(t *models.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, t)
	return nil
}

func (r *recorder) RecordAccount(a *models.TradingAccount, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append(r.accounts, a)
	r.codes = append(r.codes, code)
	return nil
}

func (r *recorder) CacheGroups(g []*models.TradingGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = g
}

func (r *recorder) SyncSymbols(s []*models.Symbol) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = s
	return nil
}

type bridgeConn struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func startBridge(t *testing.T) (*recorder, *bridgeConn, context.CancelFunc, *Server) {
	t.Helper()
	rec := &recorder{}
	log := zap.NewNop()

	s := NewServer(0, log)
	NewFeed(rec, rec, rec, log).Register(s)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		cancel()
	})
	return rec, &bridgeConn{t: t, conn: conn, reader: bufio.NewReader(conn)}, cancel, s
}

func (b *bridgeConn) send(v interface{}) {
	data, err := json.Marshal(v)
	require.NoError(b.t, err)
	_, err = b.conn.Write(append(data, '\n'))
	require.NoError(b.t, err)
}

func (b *bridgeConn) recv() map[string]interface{} {
	require.NoError(b.t, b.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := b.reader.ReadBytes('\n')
	require.NoError(b.t, err)
	var msg map[string]interface{}
	require.NoError(b.t, json.Unmarshal(line, &msg))
	return msg
}

func TestHandshake(t *testing.T) {
	_, b, _, _ := startBridge(t)

	b.send(map[string]interface{}{"type": "handshake", "terminal": "MT5-Gateway", "version": "5.0"})
	msg := b.recv()
	assert.Equal(t, "handshake_response", msg["type"])
	assert.Equal(t, "success", msg["status"])
}

func TestClosedTradeAcceptsNumericIDs(t *testing.T) {
	rec, b, _, _ := startBridge(t)

	b.send(map[string]interface{}{
		"type":              "closed_trade",
		"deal_id":           884201,
		"account_id":        "1001",
		"symbol":            "EURUSD",
		"volume":            2.5,
		"spread_commission": 0.75,
		"close_time":        1700000000,
	})
	ack := b.recv()
	assert.Equal(t, "ack", ack["type"])
	assert.Equal(t, "884201", ack["deal_id"])

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.trades, 1)
	tr := rec.trades[0]
	assert.Equal(t, "884201", tr.DealID)
	assert.Equal(t, "1001", tr.AccountID)
	assert.Equal(t, 2.5, tr.Volume)
	require.NotNil(t, tr.SpreadCommission)
	assert.Equal(t, 0.75, *tr.SpreadCommission)
	assert.Equal(t, int64(1700000000), tr.CloseTime.Unix())
}

func TestAccountsAndGroups(t *testing.T) {
	rec, b, _, _ := startBridge(t)

	b.send(map[string]interface{}{
		"type": "accounts",
		"accounts": []map[string]interface{}{
			{"account_id": 1001, "group": `real\ECN`, "referral_code": "ABCD2345"},
			{"account_id": "1002", "group": `real\Standard`, "usd_per_lot": 9},
		},
	})
	ack := b.recv()
	assert.Equal(t, "accounts", ack["ref"])
	assert.Equal(t, float64(2), ack["count"])

	b.send(map[string]interface{}{
		"type": "groups",
		"groups": []map[string]interface{}{
			{"group_id": `real\ECN`, "leverage": 200},
			{"group_id": `real\Standard`, "name": "Standard", "is_active": false},
		},
	})
	// Groups are not acked; a handshake round-trip orders the check.
	b.send(map[string]interface{}{"type": "handshake"})
	b.recv()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.accounts, 2)
	assert.Equal(t, "1001", rec.accounts[0].AccountID)
	assert.Equal(t, "ABCD2345", rec.codes[0])
	require.NotNil(t, rec.accounts[1].USDPerLot)
	assert.Equal(t, 9.0, *rec.accounts[1].USDPerLot)

	require.Len(t, rec.groups, 2)
	assert.Equal(t, `real\ECN`, rec.groups[0].Name)
	assert.True(t, rec.groups[0].IsActive)
	assert.False(t, rec.groups[1].IsActive)
}

func TestUnknownAndMalformedMessages(t *testing.T) {
	_, b, _, _ := startBridge(t)

	b.send(map[string]interface{}{"type": "teleport"})
	msg := b.recv()
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["message"], "unknown message type")

	_, err := b.conn.Write([]byte("{not json}\n"))
	require.NoError(t, err)
	msg = b.recv()
	assert.Equal(t, "error", msg["type"])

	// The connection survives bad input.
	b.send(map[string]interface{}{"type": "handshake"})
	assert.Equal(t, "handshake_response", b.recv()["type"])
}

func TestShutdownClosesClients(t *testing.T) {
	_, b, cancel, s := startBridge(t)

	b.send(map[string]interface{}{"type": "handshake"})
	b.recv()
	assert.Equal(t, 1, s.ClientCount())

	cancel()
	s.Wait()
	assert.Equal(t, 0, s.ClientCount())

	require.NoError(t, b.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := b.reader.ReadByte()
	assert.Error(t, err)
}
