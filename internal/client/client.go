// Package client assembles the task client: the session store, the request
// authorizer, the API client, the task store and filter pipelines over it.
package client

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/client/api"
	"github.com/atinyakov/GophTasks/internal/client/filter"
	"github.com/atinyakov/GophTasks/internal/client/session"
	"github.com/atinyakov/GophTasks/internal/client/tasks"
	"github.com/atinyakov/GophTasks/internal/client/transport"
	"github.com/atinyakov/GophTasks/internal/clock"
	"github.com/atinyakov/GophTasks/internal/logger"
)

// Config describes how to reach the service and where state lives.
type Config struct {
	// BaseURL is the task service root, e.g. http://localhost:8080.
	BaseURL string

	// Store persists the bearer token. Required.
	Store session.KeyValueStore

	// HTTPClient is the base client. When nil one is built from CAFile
	// and Timeout.
	HTTPClient *http.Client
	CAFile     string
	Timeout    time.Duration

	// OnUnauthorized runs after a rejected token forced a sign-out.
	OnUnauthorized func()

	// SearchDebounce and Clock configure the filter pipelines.
	SearchDebounce time.Duration
	Clock          clock.Clock

	Logger *zap.Logger
}

// Client is the assembled core.
type Client struct {
	Session *session.Store
	Tasks   *tasks.Store
	API     *api.Client

	cfg Config
	log *zap.Logger
}

// New wires the components. Sign-up and sign-in go through a plain client;
// every task call goes through the authorizer, which reads the token from
// the session on each request and signs it out on 401.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("token store is required")
	}
	log := logger.OrNop(cfg.Logger)

	base := cfg.HTTPClient
	if base == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		var err error
		base, err = transport.NewHTTPClient(cfg.CAFile, timeout)
		if err != nil {
			return nil, err
		}
	}

	authAPI := api.New(cfg.BaseURL, base, log.Named("auth"))
	sess := session.New(cfg.Store, authAPI, session.WithLogger(log.Named("session")))

	authorizer := transport.NewAuthorizer(sess, base.Transport, cfg.OnUnauthorized, log.Named("authorizer"))
	tasksAPI := api.New(cfg.BaseURL, &http.Client{Transport: authorizer, Timeout: base.Timeout}, log.Named("api"))
	taskStore := tasks.New(tasksAPI, log.Named("tasks"))

	// Tasks belong to the signed-in user and must not outlive the session.
	sess.Subscribe(func(s session.Session) {
		if !s.IsAuthenticated {
			taskStore.Reset()
		}
	})

	return &Client{
		Session: sess,
		Tasks:   taskStore,
		API:     tasksAPI,
		cfg:     cfg,
		log:     log,
	}, nil
}

// NewPipeline returns a filter pipeline over the task store. The caller
// closes it when the view goes away.
func (c *Client) NewPipeline() *filter.Pipeline {
	opts := []filter.Option{filter.WithLogger(c.log.Named("filter"))}
	if c.cfg.SearchDebounce > 0 {
		opts = append(opts, filter.WithDelay(c.cfg.SearchDebounce))
	}
	if c.cfg.Clock != nil {
		opts = append(opts, filter.WithClock(c.cfg.Clock))
	}
	return filter.New(c.Tasks, opts...)
}
