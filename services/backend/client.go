package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
)

// DefaultTimeout bounds a request when the config sets none.
const DefaultTimeout = 30 * time.Second

// Request describes one call to the REST backend.
type Request struct {
	Method string
	Path   string
	Params *core.Params
	// Body is sent as JSON. When it has a `Validate(*validator.Validate) error` method,
	// it is validated before anything is sent.
	Body interface{}
}

// URL returns the path and the sorted, encoded query of the request.
func (r Request) URL() string {
	if q := r.Params.Encode(); q != "" {
		return r.Path + "?" + q
	}
	return r.Path
}

type validatable interface {
	Validate(validate *validator.Validate) error
}

// envelope is the body of every successful reply.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the REST backend and keeps its reads in a tag cache.
type Client struct {
	baseURL    string
	http       *http.Client
	store      *cache.Store
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(
	opts Options,
	store *cache.Store,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       httpClient,
		store:      store,
		validate:   validate,
		translator: translator,
		logger:     logger,
		token:      opts.Token,
	}
}

// NewClientFromConfig builds a Client talking to conf.API.
func NewClientFromConfig(
	conf *core.Config,
	store *cache.Store,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Client {
	return NewClient(
		Options{BaseURL: conf.API.BaseURL, Token: conf.API.Token, Timeout: conf.API.Timeout},
		store, validate, translator, logger,
	)
}

func (c *Client) Store() *cache.Store { return c.store }

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken changes the bearer token of the following requests and drops every cached read,
// since they belong to the previous identity.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.store.ResetAPIState()
}

// Validate validates v and translates the failures into a *core.ValidationError.
func (c *Client) Validate(v validatable) error {
	return core.TranslateValidation(v.Validate(c.validate), c.translator)
}

// Do sends req and decodes the `data` of the reply into out (when not nil).
// Any non 2xx reply is returned as an *APIError.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	var body io.Reader
	if req.Body != nil {
		if v, ok := req.Body.(validatable); ok {
			if err := c.Validate(v); err != nil {
				return err
			}
		}
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.URL(), body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading reply")
	}
	if c.logger != nil {
		c.logger.Debug("backend request", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL(),
			"status":   resp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		return errors.Wrap(err, "decoding reply")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err = json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "decoding reply data")
	}
	return nil
}
