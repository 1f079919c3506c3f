package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/cubehunt/internal/chain"
	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/repository"
	"github.com/vancomm/cubehunt/internal/session"
)

type Leaderboard interface {
	GetLeaderboard(ctx context.Context, filter repository.LeaderboardFilter) ([]repository.LeaderboardEntry, error)
}

type MintRecords interface {
	OwnerArtifacts(ctx context.Context, owner string) ([]repository.MintedArtifact, error)
}

type HunterHandler struct {
	logger      *slog.Logger
	chain       chain.Client
	scores      session.ScoreStore
	leaderboard Leaderboard
	minted      MintRecords
}

func NewHunterHandler(
	logger *slog.Logger,
	client chain.Client,
	scores session.ScoreStore,
	leaderboard Leaderboard,
	minted MintRecords,
) *HunterHandler {
	return &HunterHandler{
		logger:      logger,
		chain:       client,
		scores:      scores,
		leaderboard: leaderboard,
		minted:      minted,
	}
}

func address(r *http.Request) string {
	return strings.ToLower(r.PathValue("address"))
}

func (h *HunterHandler) Score(w http.ResponseWriter, r *http.Request) {
	score, err := h.scores.LoadScore(r.Context(), address(r))
	if err != nil {
		sendError(w, h.logger, "unable to load score", err)
		return
	}
	sendJSONOrLog(w, h.logger, score)
}

func (h *HunterHandler) Artifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.chain.OwnedArtifacts(r.Context(), address(r))
	if err != nil {
		sendError(w, h.logger, "unable to fetch artifacts", err)
		return
	}
	sendJSONOrLog(w, h.logger, artifacts)
}

// Minted lists the artifacts this server recorded for the hunter, newest
// first. Unlike Artifacts it does not follow later trades.
func (h *HunterHandler) Minted(w http.ResponseWriter, r *http.Request) {
	records, err := h.minted.OwnerArtifacts(r.Context(), address(r))
	if err != nil {
		sendError(w, h.logger, "unable to fetch minted artifacts", err)
		return
	}
	artifacts := make([]cubes.Artifact, len(records))
	for i, m := range records {
		artifacts[i] = m.Artifact()
	}
	sendJSONOrLog(w, h.logger, artifacts)
}

type BalanceDTO struct {
	Address   string           `json:"address"`
	Balance   float64          `json:"balance"`
	Artifacts int              `json:"artifacts"`
	Score     cubes.ScoreState `json:"score"`
}

// Balance gathers wallet balance, artifact count and score concurrently.
func (h *HunterHandler) Balance(w http.ResponseWriter, r *http.Request) {
	dto := BalanceDTO{Address: address(r)}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		dto.Balance, err = h.chain.Balance(ctx, dto.Address)
		return
	})
	g.Go(func() error {
		artifacts, err := h.chain.OwnedArtifacts(ctx, dto.Address)
		dto.Artifacts = len(artifacts)
		return err
	})
	g.Go(func() (err error) {
		dto.Score, err = h.scores.LoadScore(ctx, dto.Address)
		return
	})
	if err := g.Wait(); err != nil {
		sendError(w, h.logger, "unable to fetch balance", err)
		return
	}
	sendJSONOrLog(w, h.logger, dto)
}

func (h *HunterHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	dto, err := decode[LeaderboardDTO](r.URL.Query())
	if err != nil {
		badRequest(w, h.logger, err)
		return
	}
	for _, rarity := range dto.Rarity {
		if _, err := cubes.ParseRarity(rarity); err != nil {
			badRequest(w, h.logger, err)
			return
		}
	}

	entries, err := h.leaderboard.GetLeaderboard(r.Context(), repository.LeaderboardFilter{
		Rarities: dto.Rarity,
		Limit:    dto.Limit,
	})
	if err != nil {
		sendError(w, h.logger, "unable to fetch leaderboard", err)
		return
	}
	if entries == nil {
		entries = []repository.LeaderboardEntry{}
	}
	sendJSONOrLog(w, h.logger, entries)
}
