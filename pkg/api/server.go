package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"quotebot/pkg/strategy"
	"quotebot/pkg/util"
)

// Server exposes a read-only view of the live strategy: session stats,
// positions and open resting orders. It never mutates the ledger.
type Server struct {
	maker   *strategy.MarketMaker
	router  *mux.Router
	log     *zap.SugaredLogger
	clock   util.Clock
	started int64 // unix seconds
}

// NewServer builds the status server around a running strategy.
func NewServer(maker *strategy.MarketMaker, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		maker:  maker,
		router: mux.NewRouter(),
		log:    log,
		clock:  util.RealClock{},
	}
	s.started = s.clock.Now().Unix()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/positions", s.handlePositions).Methods("GET")
	api.HandleFunc("/orders", s.handleOrders).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the full HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start serves the status API on addr. Blocks.
func (s *Server) Start(addr string) error {
	s.log.Infow("status_api_start", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	turns, nextID := s.maker.Stats()
	s.writeJSON(w, http.StatusOK, StatusInfo{
		Bot:           s.maker.Name(),
		Turns:         turns,
		NextOrderID:   nextID,
		OpenOrders:    len(s.maker.OpenOrders()),
		UptimeSeconds: s.clock.Now().Unix() - s.started,
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions := s.maker.Positions()

	out := make([]PositionInfo, 0, len(positions))
	for _, inst := range s.maker.Instruments() {
		out = append(out, PositionInfo{
			Ticker:   inst.Ticker,
			Position: positions[inst.Ticker],
			PosLimit: max(inst.PosLimit, 0),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	open := s.maker.OpenOrders()

	out := make([]OrderInfo, 0, len(open))
	for id, o := range open {
		out = append(out, OrderInfo{
			OrderID: id,
			Ticker:  o.Ticker,
			Side:    o.Side,
			Size:    o.Size,
			Price:   o.Price,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("write_response", "err", err)
	}
}
