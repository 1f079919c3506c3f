package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/cubehunt/internal/cubes"
)

func TestMemoryReveal(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.SubmitReveal(ctx, "0xabc", 3, 1)
	require.NoError(t, err)

	bitmap, err := m.RevealedBitmap(ctx)
	require.NoError(t, err)
	assert.Len(t, bitmap, cubes.BitmapLen)
	assert.True(t, cubes.BitSet(bitmap, cubes.CellID(3, 1)))

	_, err = m.SubmitReveal(ctx, "0xabc", 3, 1)
	assert.ErrorIs(t, err, ErrRejected)

	_, err = m.SubmitReveal(ctx, "0xabc", 100, 0)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestMemoryRejectHook(t *testing.T) {
	m := NewMemory()
	m.Reject = func(call MoveCall) error {
		if call.Target == "reveal_cube" {
			return errors.New("wallet locked")
		}
		return nil
	}

	_, err := m.SubmitReveal(context.Background(), "0xabc", 0, 0)
	assert.ErrorIs(t, err, ErrRejected)

	bitmap, err := m.RevealedBitmap(context.Background())
	require.NoError(t, err)
	assert.False(t, cubes.BitSet(bitmap, 0))
}

func TestMemoryMarket(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	artifact := *cubes.GenerateArtifact(42, cubes.Rare, "", time.UnixMilli(1))
	m.AddArtifact("0xseller", artifact)
	m.SetBalance("0xbuyer", 3)

	r, err := m.ListArtifact(ctx, "0xseller", artifact.ID, 1.25)
	require.NoError(t, err)

	owned, err := m.OwnedArtifacts(ctx, "0xseller")
	require.NoError(t, err)
	assert.Empty(t, owned)

	listings, err := m.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, r.ObjectID, listings[0].ID)
	assert.True(t, listings[0].Artifact.Listed)

	_, err = m.BuyListing(ctx, "0xbuyer", r.ObjectID, 1)
	assert.ErrorIs(t, err, ErrRejected, "underpaying")

	_, err = m.BuyListing(ctx, "0xbuyer", r.ObjectID, 1.25)
	require.NoError(t, err)

	owned, err = m.OwnedArtifacts(ctx, "0xbuyer")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "0xbuyer", owned[0].Owner)
	assert.False(t, owned[0].Listed)

	buyer, _ := m.Balance(ctx, "0xbuyer")
	seller, _ := m.Balance(ctx, "0xseller")
	assert.InDelta(t, 1.75, buyer, 1e-9)
	assert.InDelta(t, 1.25, seller, 1e-9)

	_, err = m.BuyListing(ctx, "0xbuyer", r.ObjectID, 1.25)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListUnknown(t *testing.T) {
	_, err := NewMemory().ListArtifact(context.Background(), "0xabc", "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
