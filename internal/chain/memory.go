package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vancomm/cubehunt/internal/cubes"
)

// Memory is an in-process Client. It backs offline mode and tests.
type Memory struct {
	mu       sync.Mutex
	bitmap   []byte
	owned    map[string][]cubes.Artifact
	listings []Listing
	balances map[string]uint64
	seq      int

	// Reject, when set, is consulted before every write; a non-nil error
	// fails the transaction with ErrRejected.
	Reject func(call MoveCall) error
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		bitmap:   make([]byte, cubes.BitmapLen),
		owned:    make(map[string][]cubes.Artifact),
		balances: make(map[string]uint64),
		now:      time.Now,
	}
}

func (m *Memory) receipt() Receipt {
	m.seq++
	return Receipt{
		Digest:   fmt.Sprintf("mem-%d", m.seq),
		ObjectID: fmt.Sprintf("0x%064x", m.seq),
	}
}

func (m *Memory) check(call MoveCall) error {
	if m.Reject == nil {
		return nil
	}
	if err := m.Reject(call); err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return nil
}

// SetRevealed marks cells as revealed on the simulated game state.
func (m *Memory) SetRevealed(ids ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if cubes.ValidID(id) {
			m.bitmap[id/8] |= 1 << (id % 8)
		}
	}
}

func (m *Memory) AddArtifact(owner string, a cubes.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.Owner = owner
	m.owned[owner] = append(m.owned[owner], a)
}

func (m *Memory) SetBalance(owner string, sui float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[owner] = toMist(sui)
}

func (m *Memory) SubmitReveal(ctx context.Context, owner string, x, y int) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if !cubes.InBounds(x, y) {
		return Receipt{}, fmt.Errorf("%w: cell %d,%d out of range", ErrRejected, x, y)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.check(MoveCall{
		Sender:    owner,
		Target:    "reveal_cube",
		Arguments: []Arg{{ArgU64, uint64(x)}, {ArgU64, uint64(y)}},
	})
	if err != nil {
		return Receipt{}, err
	}
	id := cubes.CellID(x, y)
	if cubes.BitSet(m.bitmap, id) {
		return Receipt{}, fmt.Errorf("%w: cell %d,%d already revealed", ErrRejected, x, y)
	}
	m.bitmap[id/8] |= 1 << (id % 8)
	return m.receipt(), nil
}

func (m *Memory) RevealedBitmap(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bitmap := make([]byte, len(m.bitmap))
	copy(bitmap, m.bitmap)
	return bitmap, nil
}

func (m *Memory) OwnedArtifacts(ctx context.Context, owner string) ([]cubes.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	artifacts := make([]cubes.Artifact, len(m.owned[owner]))
	copy(artifacts, m.owned[owner])
	return artifacts, nil
}

func (m *Memory) Listings(ctx context.Context) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	listings := make([]Listing, 0, len(m.listings))
	// newest first, like the event query
	for i := len(m.listings) - 1; i >= 0; i-- {
		listings = append(listings, m.listings[i])
	}
	return listings, nil
}

func (m *Memory) Balance(ctx context.Context, owner string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return toSui(m.balances[owner]), nil
}

func (m *Memory) ListArtifact(ctx context.Context, owner, artifactID string, price float64) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.check(MoveCall{
		Sender:    owner,
		Target:    "list_nft",
		Arguments: []Arg{{ArgObject, artifactID}, {ArgU64, toMist(price)}},
	})
	if err != nil {
		return Receipt{}, err
	}

	owned := m.owned[owner]
	idx := -1
	for i, a := range owned {
		if a.ID == artifactID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Receipt{}, fmt.Errorf("%w: artifact %s", ErrNotFound, artifactID)
	}
	artifact := owned[idx]
	m.owned[owner] = append(owned[:idx:idx], owned[idx+1:]...)

	r := m.receipt()
	listedAt := m.now()
	artifact.Listed = true
	artifact.Price = &price
	m.listings = append(m.listings, Listing{
		ID:       r.ObjectID,
		Artifact: artifact,
		Price:    price,
		Seller:   owner,
		ListedAt: &listedAt,
	})
	return r, nil
}

func (m *Memory) BuyListing(ctx context.Context, buyer, listingID string, price float64) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.check(MoveCall{
		Sender:    buyer,
		Target:    "buy_nft",
		Arguments: []Arg{{ArgObject, listingID}, {ArgSplitGas, toMist(price)}},
	})
	if err != nil {
		return Receipt{}, err
	}

	idx := -1
	for i, l := range m.listings {
		if l.ID == listingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Receipt{}, fmt.Errorf("%w: listing %s", ErrNotFound, listingID)
	}
	listing := m.listings[idx]
	cost := toMist(listing.Price)
	if toMist(price) < cost {
		return Receipt{}, fmt.Errorf("%w: offered %v SUI, listing asks %v", ErrRejected, price, listing.Price)
	}
	if m.balances[buyer] < cost {
		return Receipt{}, fmt.Errorf("%w: insufficient balance", ErrRejected)
	}

	m.balances[buyer] -= cost
	m.balances[listing.Seller] += cost
	m.listings = append(m.listings[:idx:idx], m.listings[idx+1:]...)

	artifact := listing.Artifact
	artifact.Owner = buyer
	artifact.Listed = false
	artifact.Price = nil
	m.owned[buyer] = append(m.owned[buyer], artifact)
	return m.receipt(), nil
}
