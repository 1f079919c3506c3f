package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/vancomm/cubehunt/internal/config"
	"github.com/vancomm/cubehunt/internal/handlers"
	"github.com/vancomm/cubehunt/internal/session"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	manager := session.NewManager(a.logger, a.records, a.scores, a.chain, a.cache...)

	sessions := handlers.NewSessionHandler(a.logger, manager, a.ws, a.luckFactor, createRand())
	hunters := handlers.NewHunterHandler(a.logger, a.chain, a.scores, a.leaderboard, a.records)
	market := handlers.NewMarketHandler(a.logger, a.chain)

	base := strings.TrimSuffix(config.BasePath(), "/")
	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		a.router.HandleFunc(method+" "+base+path, h)
	}

	handle("POST /session", sessions.Create)
	handle("GET /session/{id}", sessions.Fetch)
	handle("POST /session/{id}/reveal", sessions.Reveal)
	handle("POST /session/{id}/sync", sessions.Sync)
	handle("GET /session/{id}/connect", sessions.Connect)

	handle("GET /hunters/{address}/score", hunters.Score)
	handle("GET /hunters/{address}/artifacts", hunters.Artifacts)
	handle("GET /hunters/{address}/minted", hunters.Minted)
	handle("GET /hunters/{address}/balance", hunters.Balance)
	handle("GET /leaderboard", hunters.Leaderboard)

	handle("GET /market/listings", market.Listings)
	handle("POST /market/list", market.List)
	handle("POST /market/buy", market.Buy)
}
