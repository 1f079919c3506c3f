package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/middleware"
	"github.com/vancomm/cubehunt/internal/session"
)

type wsCommand string

const (
	wsGet    wsCommand = "g"
	wsReveal wsCommand = "o"
	wsSync   wsCommand = "s"
)

var ErrUnknownCommand = errors.New("unknown command")

type wsFrame struct {
	Command string `json:"command"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func parseXY(args []string) (x int, y int, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("expected two coordinates")
		return
	}
	if x, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("x must be an int")
		return
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("y must be an int")
		return
	}
	return
}

// execute runs one command line against s.
func execute(ctx context.Context, s *session.Session, owner, line string) (any, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, ErrUnknownCommand
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]

	switch cmd {
	case wsGet:
		return NewSessionDTO(s.Snapshot()), nil
	case wsReveal:
		x, y, err := parseXY(args)
		if err != nil {
			return nil, err
		}
		if !cubes.InBounds(x, y) {
			return nil, cubes.ErrOutOfRange
		}
		if owner == "" || (s.Owner != "" && owner != s.Owner) {
			return nil, session.ErrNoOwner
		}
		out, err := s.Reveal(ctx, cubes.CellID(x, y))
		if err != nil {
			return nil, err
		}
		return NewRevealDTO(out, s.Snapshot()), nil
	case wsSync:
		return s.Sync(ctx)
	default:
		return nil, ErrUnknownCommand
	}
}

func (h *SessionHandler) runLoop(ctx context.Context, conn *websocket.Conn, s *session.Session, owner string) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}
		h.manager.Touch(s)

		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			line = strings.TrimSpace(line)
			frame := wsFrame{Command: line}
			data, err := execute(ctx, s, owner, line)
			if err != nil {
				frame.Error = err.Error()
			} else {
				frame.Data = data
			}
			if err := conn.WriteJSON(frame); err != nil {
				return fmt.Errorf("unable to write json: %w", err)
			}
		}
	}
}

func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	owner, _ := middleware.OwnerFrom(r.Context())

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	h.logger.Debug("established WS connection", slog.Int64("session", s.ID))

	err = h.runLoop(r.Context(), conn, s, owner)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.logger.Warn("error in ws loop", slog.Any("error", err))
	}
}
