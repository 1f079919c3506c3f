package handlers

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"

	"github.com/vancomm/cubehunt/internal/config"
	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/middleware"
	"github.com/vancomm/cubehunt/internal/session"
)

var ErrInvalidSessionID = errors.New("invalid session id")

type SessionHandler struct {
	logger     *slog.Logger
	manager    *session.Manager
	ws         *config.WebSocket
	luckFactor float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSessionHandler(
	logger *slog.Logger,
	manager *session.Manager,
	ws *config.WebSocket,
	luckFactor float64,
	rnd *rand.Rand,
) *SessionHandler {
	return &SessionHandler{
		logger:     logger,
		manager:    manager,
		ws:         ws,
		luckFactor: luckFactor,
		rnd:        rnd,
	}
}

func (h *SessionHandler) randomSeed() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rnd.Int64()
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, h.logger, ErrInvalidSessionID)
		return nil, false
	}
	s, err := h.manager.Get(r.Context(), id)
	if err != nil {
		sendError(w, h.logger, "unable to load session", err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	dto, err := decode[CreateSessionDTO](r.URL.Query())
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}

	seed := h.randomSeed()
	if dto.Seed != nil {
		seed = *dto.Seed
	}
	luck := h.luckFactor
	if dto.LuckFactor != nil {
		luck = *dto.LuckFactor
	}

	owner, _ := middleware.OwnerFrom(r.Context())
	s, err := h.manager.Create(r.Context(), owner, seed, luck)
	if err != nil {
		sendError(w, h.logger, "unable to create session", err)
		return
	}

	sendStatusOrLog(w, h.logger, http.StatusCreated, NewSessionDTO(s.Snapshot()))
}

func (h *SessionHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, h.logger, NewSessionDTO(s.Snapshot()))
}

func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	pos, err := decode[PositionDTO](r.URL.Query())
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}
	if !cubes.InBounds(pos.X, pos.Y) {
		badRequest(w, h.logger, cubes.ErrOutOfRange)
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	owner, ok := middleware.OwnerFrom(r.Context())
	if !ok {
		sendError(w, h.logger, "anonymous reveal", session.ErrNoOwner)
		return
	}
	if s.Owner != "" && owner != s.Owner {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	out, err := s.Reveal(r.Context(), cubes.CellID(pos.X, pos.Y))
	if err != nil {
		sendError(w, h.logger, "unable to reveal cell", err)
		return
	}
	sendJSONOrLog(w, h.logger, NewRevealDTO(out, s.Snapshot()))
}

func (h *SessionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := s.Sync(r.Context())
	if err != nil {
		sendError(w, h.logger, "unable to sync session", err)
		return
	}
	sendJSONOrLog(w, h.logger, res)
}
