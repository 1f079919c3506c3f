package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/cubehunt/internal/chain"
	"github.com/vancomm/cubehunt/internal/middleware"
	"github.com/vancomm/cubehunt/internal/session"
)

var ErrInvalidPrice = errors.New("price must be positive")

type MarketHandler struct {
	logger *slog.Logger
	chain  chain.Client
}

func NewMarketHandler(logger *slog.Logger, client chain.Client) *MarketHandler {
	return &MarketHandler{logger: logger, chain: client}
}

func (h *MarketHandler) Listings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.chain.Listings(r.Context())
	if err != nil {
		sendError(w, h.logger, "unable to fetch listings", err)
		return
	}
	sendJSONOrLog(w, h.logger, listings)
}

func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFrom(r.Context())
	if !ok {
		sendError(w, h.logger, "anonymous listing", session.ErrNoOwner)
		return
	}
	dto, err := decode[ListArtifactDTO](r.URL.Query())
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}
	if dto.Price <= 0 {
		badRequest(w, h.logger, ErrInvalidPrice)
		return
	}

	receipt, err := h.chain.ListArtifact(r.Context(), owner, dto.ArtifactID, dto.Price)
	if err != nil {
		sendError(w, h.logger, "unable to list artifact", err)
		return
	}
	h.logger.Info("artifact listed",
		slog.String("owner", owner),
		slog.String("artifact", dto.ArtifactID),
		slog.Float64("price", dto.Price),
	)
	sendJSONOrLog(w, h.logger, receipt)
}

func (h *MarketHandler) Buy(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middleware.OwnerFrom(r.Context())
	if !ok {
		sendError(w, h.logger, "anonymous purchase", session.ErrNoOwner)
		return
	}
	dto, err := decode[BuyListingDTO](r.URL.Query())
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}
	if dto.Price <= 0 {
		badRequest(w, h.logger, ErrInvalidPrice)
		return
	}

	receipt, err := h.chain.BuyListing(r.Context(), buyer, dto.ListingID, dto.Price)
	if err != nil {
		sendError(w, h.logger, "unable to buy listing", err)
		return
	}
	h.logger.Info("listing bought",
		slog.String("buyer", buyer),
		slog.String("listing", dto.ListingID),
	)
	sendJSONOrLog(w, h.logger, receipt)
}
