package server

import (
	"fmt"
	"strings"
	"sync"

	"stocks-dashboard/src/config"
	"stocks-dashboard/src/interfaces"
	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
	"stocks-dashboard/src/session"
	"stocks-dashboard/src/storage"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config    *config.Config
	Logger    *logger.Logger
	Upstream  interfaces.IMarketData
	Watchlist *storage.Watchlist
	Session   *session.Classifier
	engine    *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan interface{} // Buffered Queue
	register   chan *Client
	unregister chan *Client
	connCount  int
	countMutex sync.RWMutex

	// Closed by Stop; the hub loop and late unregisters select on it.
	shutdown chan struct{}
	stopOnce sync.Once

	// Last tick per symbol, shared across relay sessions so the chart
	// endpoint can overlay live data.
	ticks      map[string]models.MLiveTick
	ticksMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *config.Config, market interfaces.IMarketData, watchlist *storage.Watchlist, classifier *session.Classifier, log *logger.Logger) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:    cfg,
		Logger:    log,
		Upstream:  market,
		Watchlist: watchlist,
		Session:   classifier,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		ticks:      make(map[string]models.MLiveTick),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/stocks/:symbol", s.getQuote)
	s.engine.GET("/api/stocks/:symbol/intraday", s.getIntraday)
	s.engine.GET("/api/stocks/:symbol/daily", s.getDaily)
	s.engine.GET("/api/stocks/:symbol/chart", s.getChart)
	s.engine.GET("/api/search", s.getSearch)
	s.engine.GET("/api/watchlist", s.getWatchlist)
	s.engine.POST("/api/watchlist", s.toggleWatchlist)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop signals the hub loop to tear down every client and exit. Closing the
// register/unregister/broadcast channels instead would panic the pumps that
// still send on them. Safe to call more than once.
func (s *DashboardServer) Stop() error {
	s.stopOnce.Do(func() { close(s.shutdown) })
	return nil
}

// -----------------------------------------------------------------------------
// Shared tick cache
// -----------------------------------------------------------------------------

func (s *DashboardServer) recordTick(tick models.MLiveTick) {
	s.ticksMutex.Lock()
	s.ticks[tick.Symbol] = tick
	s.ticksMutex.Unlock()
}

// lastTick returns the most recent live tick seen for a symbol, if any.
func (s *DashboardServer) lastTick(symbol string) *models.MLiveTick {
	s.ticksMutex.RLock()
	defer s.ticksMutex.RUnlock()

	if tick, ok := s.ticks[symbol]; ok {
		return &tick
	}
	return nil
}
