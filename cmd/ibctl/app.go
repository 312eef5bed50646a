package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mehrbod2002/ibadmin/internal/apiclient"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/syncer"
)

const usage = `usage: ibctl [-o json|yaml] <command> [flags]

commands:
  login        authenticate and store the admin token
  logout       forget stored tokens
  dashboard    admin overview
  requests     list IB requests
  request      show one IB request
  status       change the status of an IB request
  sets         list structure sets
  structures   list commission structures
  groups       list trading groups (-sync to pull from MT5 first)
  symbols      list symbols by category
  withdrawals  list withdrawals
  review       approve, reject or complete a withdrawal
  history      closed trades of an MT5 account with commission
  commission   commission summary of an IB
  sync         recompute commission and relink trades of an IB
  watch        sync IBs now and every interval until interrupted
  logs         audit trail (-action, -admin, -ib filters)
`

type tokenClearer interface {
	Clear() error
}

type app struct {
	client       *apiclient.Client
	store        tokenClearer
	out          io.Writer
	log          *zap.Logger
	syncInterval time.Duration
	format       string
}

func (a *app) run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("ibctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.StringVar(&a.format, "o", "json", "output format: json or yaml")
	if err := global.Parse(args); err != nil {
		return errors.New(usage)
	}
	if a.format != "json" && a.format != "yaml" {
		return errors.Errorf("unknown output format %q", a.format)
	}

	rest := global.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "login":
		return a.login(ctx, cmdArgs)
	case "logout":
		return a.store.Clear()
	case "dashboard":
		return a.print(a.client.Dashboard(ctx))
	case "requests":
		return a.requests(ctx, cmdArgs)
	case "request":
		id, err := parseID("request", cmdArgs)
		if err != nil {
			return err
		}
		return a.print(a.client.GetIBRequest(ctx, id))
	case "status":
		return a.status(ctx, cmdArgs)
	case "sets":
		return a.print(a.client.ListStructureSets(ctx))
	case "structures":
		fs := flag.NewFlagSet("structures", flag.ContinueOnError)
		group := fs.String("group", "", "MT5 group id")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		return a.print(a.client.ListCommissionStructures(ctx, *group))
	case "groups":
		return a.groups(ctx, cmdArgs)
	case "symbols":
		return a.print(a.client.ListSymbolsWithCategories(ctx))
	case "withdrawals":
		fs := flag.NewFlagSet("withdrawals", flag.ContinueOnError)
		status := fs.String("status", "", "pending, approved, rejected or completed")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		return a.print(a.client.ListWithdrawals(ctx, models.WithdrawalStatus(*status)))
	case "review":
		return a.review(ctx, cmdArgs)
	case "history":
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		account := fs.String("account", "", "MT5 account id")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		if *account == "" {
			return errors.New("history: -account is required")
		}
		return a.print(a.client.TradeHistory(ctx, *account))
	case "commission":
		id, err := parseID("commission", cmdArgs)
		if err != nil {
			return err
		}
		return a.print(a.client.ProfileCommission(ctx, id))
	case "sync":
		id, err := parseID("sync", cmdArgs)
		if err != nil {
			return err
		}
		return a.watch(ctx, []string{id}, 0, true)
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		ids := fs.String("ib", "", "comma separated IB request ids")
		interval := fs.Duration("interval", a.syncInterval, "sync interval")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		return a.watch(ctx, splitIDs(*ids), *interval, false)
	case "logs":
		return a.logs(ctx, cmdArgs)
	}
	return errors.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func parseID(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	id := fs.String("id", "", "IB request id")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if strings.TrimSpace(*id) == "" {
		return "", errors.Errorf("%s: -id is required", name)
	}
	return *id, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "admin", "username")
	password := fs.String("p", os.Getenv("IBCTL_PASSWORD"), "password (or IBCTL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		return errors.New("login: password is required")
	}
	if _, err := a.client.Login(ctx, *username, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged in as", *username)
	return nil
}

func (a *app) requests(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("requests", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	search := fs.String("search", "", "name, email or referral code")
	page := fs.Int64("page", 1, "page")
	limit := fs.Int64("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.print(a.client.ListIBRequests(ctx, models.IBRequestFilter{
		Status: models.IBStatus(*status),
		Search: *search,
		Page:   *page,
		Limit:  *limit,
	}))
}

func (a *app) logs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	action := fs.String("action", "", "audit action, e.g. UpdateIBRequestStatus")
	adminID := fs.String("admin", "", "acting admin id")
	ibID := fs.String("ib", "", "IB request id")
	page := fs.Int64("page", 1, "page")
	limit := fs.Int64("limit", 50, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.print(a.client.Logs(ctx, models.LogFilter{
		Action:      models.AuditAction(*action),
		AdminID:     *adminID,
		IBRequestID: *ibID,
		Page:        *page,
		Limit:       *limit,
	}))
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	id := fs.String("id", "", "IB request id")
	status := fs.String("to", "", "approved, rejected or banned")
	set := fs.String("set", "", "structure set id (approval)")
	usd := fs.Float64("usd", -1, "explicit USD per lot")
	pct := fs.Float64("pct", -1, "explicit spread share percentage")
	comment := fs.String("comment", "", "admin comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *status == "" {
		return errors.New("status: -id and -to are required")
	}

	change := apiclient.StatusChange{
		Status:         models.IBStatus(*status),
		StructureSetID: *set,
		AdminComment:   *comment,
	}
	if *usd >= 0 {
		change.USDPerLot = usd
	}
	if *pct >= 0 {
		change.SpreadSharePercentage = pct
	}
	return a.print(a.client.UpdateIBRequestStatus(ctx, *id, change))
}

func (a *app) groups(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ContinueOnError)
	sync := fs.Bool("sync", false, "sync from the MT5 bridge first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sync {
		n, err := a.client.SyncTradingGroups(ctx)
		if err != nil {
			return err
		}
		a.log.Info("trading groups synced", zap.Int("groups", n))
	}
	return a.print(a.client.ListTradingGroups(ctx))
}

func (a *app) review(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	id := fs.String("id", "", "withdrawal id")
	status := fs.String("to", "", "approved, rejected or completed")
	tx := fs.String("tx", "", "transaction id (completed)")
	comment := fs.String("comment", "", "admin comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *status == "" {
		return errors.New("review: -id and -to are required")
	}
	return a.print(a.client.UpdateWithdrawalStatus(ctx, *id, apiclient.WithdrawalReview{
		Status:        models.WithdrawalStatus(*status),
		TransactionID: *tx,
		AdminComment:  *comment,
	}))
}

// watch drives the poller; once runs a single round.
func (a *app) watch(ctx context.Context, ids []string, interval time.Duration, once bool) error {
	if len(ids) == 0 {
		return errors.New("at least one IB request id is required")
	}

	p := syncer.NewPoller(a.client, interval, ids, a.log)
	var failed error
	p.OnResult(func(r syncer.Result) {
		if r.Err != nil {
			failed = r.Err
			return
		}
		_ = a.render(map[string]interface{}{
			"ib_request_id": r.IBRequestID,
			"linked_trades": r.Linked,
			"commission":    r.Snapshot,
		})
	})

	if once {
		if err := p.Tick(ctx); err != nil {
			return err
		}
		return failed
	}
	return p.Run(ctx)
}

func (a *app) print(v interface{}, err error) error {
	if err != nil {
		return err
	}
	return a.render(v)
}

func (a *app) render(v interface{}) error {
	if a.format == "yaml" {
		// Round-trip through JSON so yaml keys follow the API field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
