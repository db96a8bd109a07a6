package server

import (
	"net/http"
	"sync"
	"time"

	"caption-cage/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	ws       *wsHub
	cfg      config.Config
	judge    Judge
	images   ImageSource
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:  NewStore(),
		db:     conn,
		ws:     newWSHub(),
		cfg:    cfg,
		judge:  newOpenAIJudge(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		images: newCatAPISource(cfg.CatAPIURL, cfg.CatAPIKey),
		timers: make(map[string]*time.Timer),
	}
}

// WithJudge swaps the caption judge; tests use this to avoid the network.
func (s *Server) WithJudge(judge Judge) *Server {
	s.judge = judge
	return s
}

// WithImageSource swaps the round image source.
func (s *Server) WithImageSource(images ImageSource) *Server {
	s.images = images
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{code}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{code}/join", s.handleJoinSession)
	mux.HandleFunc("POST /api/sessions/{code}/start-round", s.handleStartRound)
	mux.HandleFunc("POST /api/sessions/{code}/rounds/{number}/captions", s.handleSubmitCaption)
	mux.HandleFunc("POST /api/sessions/{code}/rounds/{number}/reveal", s.handleRevealRound)
	mux.HandleFunc("POST /api/sessions/{code}/play-again", s.handlePlayAgain)
	mux.HandleFunc("POST /api/sessions/{code}/end", s.handleEndSession)
	mux.HandleFunc("GET /api/sessions/{code}/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/sessions/{code}/events", s.handleEvents)
	mux.HandleFunc("GET /ws/sessions/{code}", s.handleWebsocket)
	return mux
}
