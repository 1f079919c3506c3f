package config

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const defaultWSBufferSize = 1024

type WebSocket struct {
	Upgrader websocket.Upgrader
	// Origins allowed to open the session loop; empty allows any.
	Origins []string
}

func bufferSize(name string) (int, error) {
	s, ok := os.LookupEnv(name)
	if !ok {
		return defaultWSBufferSize, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return n, nil
}

func NewWebSocket() (*WebSocket, error) {
	readSize, err := bufferSize("WS_READ_BUFFER_SIZE")
	if err != nil {
		return nil, err
	}
	writeSize, err := bufferSize("WS_WRITE_BUFFER_SIZE")
	if err != nil {
		return nil, err
	}

	ws := &WebSocket{}
	if s, ok := os.LookupEnv("WS_ALLOWED_ORIGINS"); ok && s != "" {
		for _, origin := range strings.Split(s, ",") {
			ws.Origins = append(ws.Origins, strings.TrimSpace(origin))
		}
	}

	ws.Upgrader = websocket.Upgrader{
		ReadBufferSize:  readSize,
		WriteBufferSize: writeSize,
		CheckOrigin:     ws.checkOrigin,
	}
	return ws, nil
}

func (ws *WebSocket) checkOrigin(r *http.Request) bool {
	if len(ws.Origins) == 0 {
		return true
	}
	return slices.Contains(ws.Origins, r.Header.Get("Origin"))
}
