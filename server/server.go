// Package server exposes the leaderboard over HTTP and pushes refresh
// signals to dashboard clients over WebSocket. The build-trigger webhook
// hands each run to a detached ingestion goroutine so the CI caller gets
// its acknowledgment immediately.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nanhai/arena/build"
	"github.com/nanhai/arena/competition"
	"github.com/nanhai/arena/config"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100

	// ShutdownTimeout is how long to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
)

// ArenaServer serves the REST API, the WebSocket refresh channel and the
// build-trigger webhook.
type ArenaServer struct {
	db  *sql.DB
	cfg *config.Config

	users       *competition.UserStore
	submissions *competition.SubmissionStore
	comps       *competition.CompetitionStore
	stats       *competition.StatsService

	buildClient *build.Client
	resolver    *build.Resolver
	ingestor    *build.Ingestor

	// triggerLimiter bounds webhook acceptance so CI retry storms do not
	// fan out into unbounded ingestion goroutines
	triggerLimiter *rate.Limiter

	httpServer *http.Server

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	logger *zap.SugaredLogger

	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	broadcastDrops atomic.Int64
}

// New wires the stores, the build pipeline and the WebSocket hub
func New(db *sql.DB, cfg *config.Config, logger *zap.SugaredLogger) *ArenaServer {
	ctx, cancel := context.WithCancel(context.Background())

	users := competition.NewUserStore(db)
	submissions := competition.NewSubmissionStore(db)
	comps := competition.NewCompetitionStore(db)

	perMinute := cfg.Server.TriggerRatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.Server.TriggerBurst
	if burst <= 0 {
		burst = 5
	}

	s := &ArenaServer{
		db:             db,
		cfg:            cfg,
		users:          users,
		submissions:    submissions,
		comps:          comps,
		stats:          competition.NewStatsService(users, submissions, comps, logger),
		buildClient:    build.NewClient(cfg.BuildAPI, logger),
		resolver:       build.NewResolver(users, logger),
		triggerLimiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}
	s.ingestor = build.NewIngestor(s.buildClient, submissions, s, logger)
	return s
}

// BuildClient exposes the build API client so the config watcher can
// push reloaded settings into it.
func (s *ArenaServer) BuildClient() *build.Client {
	return s.buildClient
}

// Run processes client registration until the server context is
// cancelled. Start launches it; call directly only in tests.
func (s *ArenaServer) Run() {
	for {
		select {
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		case <-s.ctx.Done():
			s.logger.Debugw("Hub stopping due to context cancellation")
			return
		}
	}
}

// handleClientRegister handles a new client connection
func (s *ArenaServer) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients,
		)
		client.close()
		return
	}
	s.clients[client] = true
	totalClients := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client connected",
		"client_id", client.id,
		"total_clients", totalClients,
	)
}

// handleClientUnregister handles a client disconnection
func (s *ArenaServer) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		totalClients := len(s.clients)
		s.mu.Unlock()

		client.close()

		s.logger.Infow("Client disconnected",
			"client_id", client.id,
			"total_clients", totalClients,
		)
	} else {
		s.mu.Unlock()
	}
}

// removeSlowClient drops a client whose send channel stayed full
func (s *ArenaServer) removeSlowClient(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		s.mu.Unlock()
	} else {
		s.mu.Unlock()
		return
	}

	client.close()

	s.logger.Warnw("Client send channel full, removing client",
		"client_id", client.id,
		"total_drops", s.broadcastDrops.Load(),
	)
}
