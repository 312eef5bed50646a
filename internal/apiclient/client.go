// Package apiclient talks to the IB admin REST API.
package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/tokenstore"
)

// TokenStore holds the bearer tokens. *tokenstore.Store satisfies it.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Store   TokenStore
	// OnUnauthorized runs after a 401 has cleared the stored tokens.
	OnUnauthorized func()
	Log            *zap.Logger
}

type Client struct {
	http           *resty.Client
	timeout        time.Duration
	store          TokenStore
	onUnauthorized func()
	log            *zap.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	if opts.Store == nil {
		return nil, errors.New("apiclient: token store is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ibadmin-client/1.0")

	return &Client{
		http:           httpClient,
		timeout:        opts.Timeout,
		store:          opts.Store,
		onUnauthorized: opts.OnUnauthorized,
		log:            opts.Log,
	}, nil
}

type request struct {
	method string
	path   string
	query  map[string]string
	body   interface{}
	// public requests send no token and treat 401 as a plain API error.
	public bool
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if !r.public {
		token, err := c.store.Get(tokenKey(r.path))
		if err != nil {
			return errors.Wrap(err, "read token")
		}
		if token != "" {
			req.SetAuthToken(token)
		}
	}
	if len(r.query) > 0 {
		req.SetQueryParams(r.query)
	}
	if r.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(r.body)
	}

	resp, err := req.Execute(r.method, r.path)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
			return errors.Wrapf(ErrTimeout, "%s %s", r.method, r.path)
		case errors.Is(err, context.Canceled):
			return errors.Wrapf(err, "%s %s", r.method, r.path)
		}
		return errors.Wrapf(ErrNetwork, "%s %s: %v", r.method, r.path, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized && !r.public {
		c.expireSession()
		return errors.Wrapf(ErrSessionExpired, "%s %s", r.method, r.path)
	}
	if !resp.IsSuccess() {
		return &APIError{Status: resp.StatusCode(), Message: errorMessage(resp)}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode %s %s", r.method, r.path)
	}
	return nil
}

func (c *Client) expireSession() {
	if err := c.store.Delete(tokenstore.AdminTokenKey, tokenstore.UserTokenKey); err != nil {
		c.log.Warn("failed to clear stored tokens", zap.Error(err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func tokenKey(path string) string {
	if path == "/admin" || strings.HasPrefix(path, "/admin/") {
		return tokenstore.AdminTokenKey
	}
	return tokenstore.UserTokenKey
}

func errorMessage(resp *resty.Response) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := http.StatusText(resp.StatusCode()); text != "" {
		return text
	}
	return resp.Status()
}
