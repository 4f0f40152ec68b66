package board

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rmrobinson/kiosk/services/transit"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// Response wraps every JSON payload served by the API.
type Response[T any] struct {
	Data T `json:"data"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
}

// Server exposes the kiosk over HTTP and pushes board updates over a websocket.
type Server struct {
	logger   *zap.Logger
	app      *App
	upgrader websocket.Upgrader

	srv *http.Server
}

// NewServer creates a server for the app listening on addr.
func NewServer(logger *zap.Logger, app *App, addr string) *Server {
	s := &Server{
		logger: logger,
		app:    app,
		upgrader: websocket.Upgrader{
			// Kiosk front-ends are served from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Router returns the routes of the API.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	})

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/board", s.handleBoard).Methods(http.MethodGet)
	r.HandleFunc("/api/board/{column}", s.handleColumn).Methods(http.MethodGet)
	r.HandleFunc("/api/messages", s.handleMessages).Methods(http.MethodGet)
	r.HandleFunc("/api/weather", s.handleWeather).Methods(http.MethodGet)
	r.HandleFunc("/api/news", s.handleNews).Methods(http.MethodGet)
	r.HandleFunc("/api/bikeshare", s.handleBikeshare).Methods(http.MethodGet)
	r.HandleFunc("/api/racing", s.handleRacing).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebsocket)
	return r
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening",
		zap.String("addr", s.srv.Addr),
	)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response[T]{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	model := s.app.Board.Current()
	if model == nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}

	status := "ok"
	if len(model.Errors) > 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      status,
		GeneratedAt: model.GeneratedAt,
		Errors:      model.Errors,
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	model := s.app.Board.Current()
	if model == nil {
		writeError(w, http.StatusServiceUnavailable, "board not ready")
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleColumn(w http.ResponseWriter, r *http.Request) {
	model := s.app.Board.Current()
	if model == nil {
		writeError(w, http.StatusServiceUnavailable, "board not ready")
		return
	}

	groups, ok := model.Columns[mux.Vars(r)["column"]]
	if !ok {
		writeError(w, http.StatusNotFound, "column not found")
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	msgs := s.app.Traffic.Current()
	if msgs == nil {
		writeError(w, http.StatusServiceUnavailable, "messages not ready")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.app.Weather == nil || s.app.Weather.Current() == nil {
		writeError(w, http.StatusServiceUnavailable, "weather not available")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Weather.Current())
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.app.News == nil {
		writeError(w, http.StatusServiceUnavailable, "news not available")
		return
	}
	writeJSON(w, http.StatusOK, s.app.News.List())
}

func (s *Server) handleBikeshare(w http.ResponseWriter, r *http.Request) {
	if s.app.Bikeshare == nil {
		writeError(w, http.StatusServiceUnavailable, "bike-share not available")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Bikeshare.Stations())
}

func (s *Server) handleRacing(w http.ResponseWriter, r *http.Request) {
	if s.app.Racing == nil {
		writeError(w, http.StatusServiceUnavailable, "racing not available")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Racing.Upcoming(time.Now()))
}

// handleWebsocket sends the current board, then every new board as it is published.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Info("unable to upgrade connection",
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	sink := s.app.Board.Subscribe()
	defer sink.Close()

	logger := s.logger.With(zap.String("sink_id", sink.ID()))
	logger.Debug("websocket connected")

	// Incoming messages are discarded; reading is needed to process pongs and closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if model := s.app.Board.Current(); model != nil {
		if err := s.writeModel(conn, model); err != nil {
			return
		}
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			logger.Debug("websocket closed by peer")
			return
		case <-r.Context().Done():
			return
		case model, ok := <-sink.Messages():
			if !ok {
				return
			}
			if err := s.writeModel(conn, model); err != nil {
				logger.Debug("websocket write failed",
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeModel(conn *websocket.Conn, model *transit.BoardModel) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(Response[*transit.BoardModel]{Data: model})
}
