package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/cubehunt/internal/chain"
	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/session"
)

// SendJSON writes v with the given status. The body is encoded first so an
// encoding failure can still answer 500.
func SendJSON(w http.ResponseWriter, status int, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return w.Write(payload)
}

func sendStatusOrLog(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	_, err := SendJSON(w, status, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	sendStatusOrLog(w, logger, http.StatusOK, v)
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cubes.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, cubes.ErrAlreadyRevealed),
		errors.Is(err, session.ErrRevealPending):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoOwner):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, chain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrChainRejected),
		errors.Is(err, chain.ErrRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendError answers with the status err maps to. Unexpected errors are logged
// and their text is not sent.
func sendError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.Any("error", err))
		w.WriteHeader(status)
		return
	}
	logger.Debug(msg, slog.Any("error", err))
	sendStatusOrLog(w, logger, status, wrapError(err))
}

func badRequest(w http.ResponseWriter, logger *slog.Logger, err error) {
	sendStatusOrLog(w, logger, http.StatusBadRequest, wrapError(err))
}
