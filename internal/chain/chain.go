package chain

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/cubehunt/internal/cubes"
)

const mistPerSui = 1e9

var (
	ErrRejected = errors.New("transaction rejected")
	ErrNotFound = errors.New("object not found")
)

type Receipt struct {
	Digest string `json:"digest"`
	// ObjectID is the first object the transaction created, if any.
	ObjectID string `json:"object_id,omitempty"`
}

type Listing struct {
	ID       string         `json:"id"`
	Artifact cubes.Artifact `json:"nft"`
	Price    float64        `json:"price"`
	Seller   string         `json:"seller"`
	ListedAt *time.Time     `json:"listed_at,omitempty"`
}

// Client is everything the game needs from the chain. Writes go through the
// owner's signer; reads are plain queries.
type Client interface {
	SubmitReveal(ctx context.Context, owner string, x, y int) (Receipt, error)
	RevealedBitmap(ctx context.Context) ([]byte, error)
	OwnedArtifacts(ctx context.Context, owner string) ([]cubes.Artifact, error)
	Listings(ctx context.Context) ([]Listing, error)
	Balance(ctx context.Context, owner string) (float64, error)
	ListArtifact(ctx context.Context, owner, artifactID string, price float64) (Receipt, error)
	BuyListing(ctx context.Context, buyer, listingID string, price float64) (Receipt, error)
}

func toMist(sui float64) uint64 {
	return uint64(sui * mistPerSui)
}

func toSui(mist uint64) float64 {
	return float64(mist) / mistPerSui
}
