package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/cubehunt/internal/cubes"
	"github.com/vancomm/cubehunt/internal/repository"
)

func TestCreateMergesChain(t *testing.T) {
	f := newFixture(t)
	f.chain.SetRevealed(0, 1, 2)

	s, err := f.manager.Create(context.Background(), testOwner, testSeed, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Snapshot().Grid.RevealedCount())
	assert.Equal(t, testOwner, s.Owner)
}

func TestCreateLoadsScore(t *testing.T) {
	f := newFixture(t)
	want := cubes.ScoreState{Score: 900, Combo: 2, MaxCombo: 5}
	require.NoError(t, f.repo.SaveScore(context.Background(), testOwner, want))

	s, err := f.manager.Create(context.Background(), testOwner, testSeed, 1.0)
	require.NoError(t, err)
	assert.Equal(t, want, s.Score())

	score, err := f.manager.Score(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, want, score)
}

func TestGetCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.manager.Create(ctx, testOwner, testSeed, 1.0)
	require.NoError(t, err)

	got, err := f.manager.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestGetRebuilds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.manager.Create(ctx, testOwner, testSeed, 1.7)
	require.NoError(t, err)

	nft := firstOf(t, isKind(cubes.NFT))
	out, err := s.Reveal(ctx, nft)
	require.NoError(t, err)
	before := s.Snapshot()

	f.manager.Forget(s.ID)
	rebuilt, err := f.manager.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.NotSame(t, s, rebuilt)

	after := rebuilt.Snapshot()
	assert.Equal(t, before.Seed, after.Seed)
	assert.Equal(t, before.LuckFactor, after.LuckFactor)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Grid.Bitmap(), after.Grid.Bitmap())

	cell := after.Grid.Cells[nft]
	require.NotNil(t, cell.Artifact)
	assert.Equal(t, out.Artifact.ID, cell.Artifact.ID)
	assert.Equal(t, out.Artifact.Traits, cell.Artifact.Traits)
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func hintCells(t *testing.T, n int) []int {
	t.Helper()
	var ids []int
	for _, c := range cubes.Generate(testSeed, 1.0).Cells {
		if c.Kind == cubes.Empty && c.NeighborCount > 0 {
			ids = append(ids, c.ID)
			if len(ids) == n {
				return ids
			}
		}
	}
	t.Fatalf("fewer than %d hint cells", n)
	return nil
}

func TestOwnerSessionsShareScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.manager.Create(ctx, testOwner, testSeed, 1.0)
	require.NoError(t, err)
	b, err := f.manager.Create(ctx, testOwner, testSeed, 1.0)
	require.NoError(t, err)

	hints := hintCells(t, 4)
	var total int64
	for _, id := range hints[:3] {
		out, err := a.Reveal(ctx, id)
		require.NoError(t, err)
		total += out.Award.Points
	}
	out, err := b.Reveal(ctx, hints[3])
	require.NoError(t, err)
	total += out.Award.Points
	assert.Equal(t, 4, out.Award.Combo, "combo carries over between sessions")

	stored, err := f.repo.LoadScore(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, total, stored.Score)
	assert.Equal(t, 4, stored.MaxCombo)
	assert.Equal(t, stored, b.Score())

	score, err := f.manager.Score(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, stored, score)
}

func TestEvictedSessionsRebuild(t *testing.T) {
	t.Run("size", func(t *testing.T) {
		repo := repository.NewMemory()
		f := newFixture(t)
		m := NewManager(discard, repo, repo, f.chain, WithCacheSize(1))
		ctx := context.Background()

		first, err := m.Create(ctx, testOwner, testSeed, 1.0)
		require.NoError(t, err)
		hint := hintCells(t, 1)[0]
		_, err = first.Reveal(ctx, hint)
		require.NoError(t, err)

		_, err = m.Create(ctx, testOwner, testSeed+1, 1.0)
		require.NoError(t, err)
		assert.Equal(t, 1, m.Cached())

		rebuilt, err := m.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.NotSame(t, first, rebuilt)
		assert.Equal(t, first.Snapshot().Grid.Bitmap(), rebuilt.Snapshot().Grid.Bitmap())
		assert.True(t, rebuilt.Snapshot().Grid.Cells[hint].Revealed)
	})

	t.Run("idle", func(t *testing.T) {
		repo := repository.NewMemory()
		f := newFixture(t)
		m := NewManager(discard, repo, repo, f.chain, WithIdleTTL(20*time.Millisecond))
		ctx := context.Background()

		s, err := m.Create(ctx, testOwner, testSeed, 1.0)
		require.NoError(t, err)
		time.Sleep(60 * time.Millisecond)

		rebuilt, err := m.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.NotSame(t, s, rebuilt)
		assert.Equal(t, s.Seed, rebuilt.Seed)
	})

	t.Run("touched", func(t *testing.T) {
		repo := repository.NewMemory()
		f := newFixture(t)
		m := NewManager(discard, repo, repo, f.chain, WithIdleTTL(time.Minute))
		ctx := context.Background()

		s, err := m.Create(ctx, testOwner, testSeed, 1.0)
		require.NoError(t, err)
		m.Forget(s.ID)
		m.Touch(s)

		got, err := m.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Same(t, s, got)
	})
}
