package wsh

import (
	"net/http"

	"github.com/gorilla/mux"

	"rugby-scorekeeper/internal/match"
	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/scoring"
	"rugby-scorekeeper/internal/session"
)

// LiveView: состояние открытой сессии.
type LiveView struct {
	Match models.Match `json:"match"`
	Stats match.Stats  `json:"stats"`
	Dirty bool         `json:"dirty"`
}

func view(s *session.Session) LiveView {
	return LiveView{Match: s.Snapshot(), Stats: s.Stats(), Dirty: s.Dirty()}
}

func (s *Server) liveRoutes(r *mux.Router) {
	r.HandleFunc("", s.handleLiveList).Methods(http.MethodGet)
	r.HandleFunc("", s.handleLiveStart).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.handleLiveGet).Methods(http.MethodGet)
	r.HandleFunc("/{id}", s.handleLiveClose).Methods(http.MethodDelete)
	r.HandleFunc("/{id}/open", s.handleLiveOpen).Methods(http.MethodPost)

	r.HandleFunc("/{id}/pause", s.live(func(ss *session.Session, r *http.Request) error {
		_, err := ss.TogglePause()
		return err
	})).Methods(http.MethodPost)
	r.HandleFunc("/{id}/second-half", s.live(func(ss *session.Session, r *http.Request) error {
		return ss.AdvanceToSecondHalf()
	})).Methods(http.MethodPost)
	r.HandleFunc("/{id}/finish", s.live(func(ss *session.Session, r *http.Request) error {
		return ss.Finish(r.Context())
	})).Methods(http.MethodPost)
	r.HandleFunc("/{id}/save", s.live(func(ss *session.Session, r *http.Request) error {
		return ss.Save(r.Context())
	})).Methods(http.MethodPost)
	r.HandleFunc("/{id}/tick", s.live(func(ss *session.Session, r *http.Request) error {
		return ss.Tick()
	})).Methods(http.MethodPost)

	r.HandleFunc("/{id}/scores", s.live(func(ss *session.Session, r *http.Request) error {
		var req struct {
			TeamID   string           `json:"teamId"`
			Kind     models.ScoreKind `json:"kind"`
			PlayerID string           `json:"playerId"`
		}
		if err := decode(r, &req); err != nil {
			return err
		}
		_, err := ss.AddScore(req.TeamID, req.Kind, req.PlayerID)
		return err
	})).Methods(http.MethodPost)
	r.HandleFunc("/{id}/scores/{scoreId}", s.live(func(ss *session.Session, r *http.Request) error {
		var p scoring.Patch
		if err := decode(r, &p); err != nil {
			return err
		}
		_, err := ss.EditScore(mux.Vars(r)["scoreId"], p)
		return err
	})).Methods(http.MethodPut)
	r.HandleFunc("/{id}/scores/{scoreId}", s.live(func(ss *session.Session, r *http.Request) error {
		return ss.DeleteScore(mux.Vars(r)["scoreId"])
	})).Methods(http.MethodDelete)

	r.HandleFunc("/{id}/cards", s.live(func(ss *session.Session, r *http.Request) error {
		var req struct {
			PlayerID string          `json:"playerId"`
			Kind     models.CardKind `json:"kind"`
		}
		if err := decode(r, &req); err != nil {
			return err
		}
		_, err := ss.AddCard(req.PlayerID, req.Kind)
		return err
	})).Methods(http.MethodPost)
	r.HandleFunc("/{id}/cards/{cardId}", s.live(func(ss *session.Session, r *http.Request) error {
		return ss.DeleteCard(mux.Vars(r)["cardId"])
	})).Methods(http.MethodDelete)

	r.HandleFunc("/{id}/substitutions", s.live(func(ss *session.Session, r *http.Request) error {
		var req struct {
			TeamID    string `json:"teamId"`
			PlayerOut string `json:"playerOut"`
			PlayerIn  string `json:"playerIn"`
		}
		if err := decode(r, &req); err != nil {
			return err
		}
		_, err := ss.Substitute(req.TeamID, req.PlayerOut, req.PlayerIn)
		return err
	})).Methods(http.MethodPost)

	r.HandleFunc("/{id}/teams/{teamId}", s.live(func(ss *session.Session, r *http.Request) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := decode(r, &req); err != nil {
			return err
		}
		return ss.RenameTeam(mux.Vars(r)["teamId"], req.Name)
	})).Methods(http.MethodPut)
	r.HandleFunc("/{id}/players/{playerId}", s.live(func(ss *session.Session, r *http.Request) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := decode(r, &req); err != nil {
			return err
		}
		return ss.RenamePlayer(mux.Vars(r)["playerId"], req.Name)
	})).Methods(http.MethodPut)
}

// live оборачивает команды открытой сессии, ответом идёт свежее состояние.
func (s *Server) live(cmd func(*session.Session, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ss, found := s.Sessions.Get(mux.Vars(r)["id"])
		if !found {
			s.fail(w, session.ErrSessionNotFound, "session not found")
			return
		}
		if err := cmd(ss, r); err != nil {
			s.fail(w, err, "command rejected")
			return
		}
		ok(w, view(ss), "")
	}
}

func (s *Server) handleLiveList(w http.ResponseWriter, r *http.Request) {
	list := s.Sessions.List()
	out := make([]LiveView, 0, len(list))
	for _, ss := range list {
		out = append(out, view(ss))
	}
	n := len(out)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: out, Count: &n})
}

func (s *Server) handleLiveStart(w http.ResponseWriter, r *http.Request) {
	ss, err := s.Sessions.Start(r.Context())
	if err != nil {
		s.fail(w, err, "failed to start match")
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: view(ss), Message: "match started"})
}

func (s *Server) handleLiveOpen(w http.ResponseWriter, r *http.Request) {
	ss, err := s.Sessions.Open(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err, "failed to open match")
		return
	}
	ok(w, view(ss), "")
}

func (s *Server) handleLiveGet(w http.ResponseWriter, r *http.Request) {
	ss, found := s.Sessions.Get(mux.Vars(r)["id"])
	if !found {
		s.fail(w, session.ErrSessionNotFound, "session not found")
		return
	}
	ok(w, view(ss), "")
}

func (s *Server) handleLiveClose(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Close(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err, "failed to close session")
		return
	}
	ok(w, nil, "session closed")
}
