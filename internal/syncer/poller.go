// Package syncer periodically asks the backend to recompute commission and
// relink trade history for the IB profiles being watched.
package syncer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/apiclient"
	"github.com/mehrbod2002/ibadmin/internal/models"
)

const DefaultInterval = 5 * time.Minute

type Client interface {
	SyncCommission(ctx context.Context, ibID string) (*models.CommissionSnapshot, error)
	SyncTradeHistory(ctx context.Context, ibID string) (int64, error)
}

// Result is reported after each IB sync attempt.
type Result struct {
	IBRequestID string
	Snapshot    *models.CommissionSnapshot
	Linked      int64
	Err         error
}

type Poller struct {
	client   Client
	interval time.Duration
	ibIDs    []string
	log      *zap.Logger
	onResult func(Result)
}

func NewPoller(client Client, interval time.Duration, ibIDs []string, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{client: client, interval: interval, ibIDs: ibIDs, log: log}
}

// OnResult registers a callback invoked after every IB sync.
func (p *Poller) OnResult(fn func(Result)) {
	p.onResult = fn
}

// Run syncs immediately and then on every interval until ctx is done. It
// returns nil on cancellation and an error only when the session expired.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one sync round over the watched IBs. Per-IB failures are logged;
// only a session expiry aborts the round.
func (p *Poller) Tick(ctx context.Context) error {
	for _, id := range p.ibIDs {
		if ctx.Err() != nil {
			return nil
		}
		res := p.syncOne(ctx, id)
		if p.onResult != nil {
			p.onResult(res)
		}
		if res.Err == nil {
			continue
		}
		if errors.Is(res.Err, apiclient.ErrSessionExpired) {
			p.log.Warn("session expired, stopping commission sync", zap.String("ib_request_id", id))
			return res.Err
		}
		if ctx.Err() != nil {
			return nil
		}
		p.log.Error("commission sync failed", zap.String("ib_request_id", id), zap.Error(res.Err))
	}
	return nil
}

func (p *Poller) syncOne(ctx context.Context, id string) Result {
	res := Result{IBRequestID: id}

	snapshot, err := p.client.SyncCommission(ctx, id)
	if err != nil {
		res.Err = errors.Wrap(err, "sync commission")
		return res
	}
	res.Snapshot = snapshot

	linked, err := p.client.SyncTradeHistory(ctx, id)
	if err != nil {
		res.Err = errors.Wrap(err, "sync trade history")
		return res
	}
	res.Linked = linked

	p.log.Info("commission synced",
		zap.String("ib_request_id", id),
		zap.Float64("total_commission", snapshot.TotalCommission),
		zap.Int64("linked_trades", linked),
	)
	return res
}
