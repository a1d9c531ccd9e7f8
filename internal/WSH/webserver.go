// Package wsh: HTTP API и websocket-лента живых матчей.
package wsh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"rugby-scorekeeper/internal/match"
	mtH "rugby-scorekeeper/internal/matchHandlers"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/session"
	"rugby-scorekeeper/internal/storage"
)

const maxBody = 10 << 20

type PDFRenderer interface {
	MatchPDF(ctx context.Context, m models.Match) ([]byte, error)
	SummaryPDF(ctx context.Context, m models.Match) ([]byte, error)
}

// Response: общий конверт ответа API.
type Response struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Count    *int   `json:"count,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type Server struct {
	Matches  *mtH.Handler
	Sessions *session.Manager
	Hub      *Hub
	PDF      PDFRenderer
	Log      *zap.SugaredLogger
	Now      func() time.Time

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

func NewServer(matches *mtH.Handler, sessions *session.Manager, hub *Hub, pdf PDFRenderer, log *zap.SugaredLogger) *Server {
	return &Server{
		Matches:  matches,
		Sessions: sessions,
		Hub:      hub,
		PDF:      pdf,
		Log:      log,
		Now:      time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/matches", s.handleListMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches", s.handleCreateMatch).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", s.handleUpdateMatch).Methods(http.MethodPut)
	api.HandleFunc("/matches/{id}", s.handleDeleteMatch).Methods(http.MethodDelete)
	api.HandleFunc("/matches/{id}/report", s.handleReport).Methods(http.MethodGet)

	api.HandleFunc("/statistics", s.handleStatistics).Methods(http.MethodGet)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodPost)
	api.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)

	s.liveRoutes(api.PathPrefix("/live").Subrouter())

	router.HandleFunc("/ws", s.handleWebSocket)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Response{Message: "route not found"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

func (s *Server) StartWS(port string) error {
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.Log.Infow("Сервер запущен", "addr", "http://localhost:"+port)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func ok(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// statusFor переводит ошибки домена в HTTP-коды.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, match.ErrNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidMatch),
		errors.Is(err, storage.ErrInvalidPatch),
		errors.Is(err, storage.ErrMalformedImport),
		errors.Is(err, match.ErrInvalidKind),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case match.IsRejection(err),
		errors.Is(err, session.ErrMatchFinished),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error, message string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.Log.Errorw(message, "error", err)
	}
	writeJSON(w, code, Response{Message: message, Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, errors.Join(errBadRequest, err)
	}
	return body, nil
}

func decode(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "server is running",
		Data: map[string]any{
			"timestamp": s.Now().UTC().Format(time.RFC3339),
			"sessions":  len(s.Sessions.List()),
			"clients":   s.Hub.Clients(),
		},
	})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	all, err := s.Matches.GetAllMatches(r.Context())
	if err != nil {
		s.fail(w, err, "failed to list matches")
		return
	}
	n := len(all)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: all, Count: &n})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.Matches.GetMatchByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err, "match not found")
		return
	}
	ok(w, m, "")
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err, "failed to create match")
		return
	}
	m, err := s.Matches.CreateMatch(r.Context(), body)
	if err != nil {
		s.fail(w, err, "failed to create match")
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: m, Message: "match created"})
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err, "failed to update match")
		return
	}
	m, err := s.Matches.UpdateMatch(r.Context(), mux.Vars(r)["id"], body)
	if err != nil {
		s.fail(w, err, "failed to update match")
		return
	}
	ok(w, m, "match updated")
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.Matches.DeleteMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err, "failed to delete match")
		return
	}
	ok(w, m, "match deleted")
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.Matches.GetStatistics(r.Context())
	if err != nil {
		s.fail(w, err, "failed to compute statistics")
		return
	}
	ok(w, st, "")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := s.Matches.Export(r.Context())
	if err != nil {
		s.fail(w, err, "failed to export matches")
		return
	}
	n := len(file.Data)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: file.Data, Filename: file.Filename, Count: &n})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err, "failed to import matches")
		return
	}
	n, err := s.Matches.Import(r.Context(), body)
	if err != nil {
		s.fail(w, err, "failed to import matches")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Count: &n, Message: "matches imported"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warnw("Не удалось открыть websocket", "error", err)
		return
	}
	c := &Client{
		hub:     s.Hub,
		conn:    conn,
		send:    make(chan []byte, 64),
		matchID: r.URL.Query().Get("match"),
	}
	select {
	case s.Hub.register <- c:
	case <-s.Hub.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
