package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vancomm/cubehunt/internal/cubes"
)

const (
	clockObjectID = "0x6"
	listingsLimit = 50
)

// Objects names the deployed package and its shared game state.
type Objects struct {
	PackageID   string
	GameStateID string
	Module      string
	GasBudget   uint64
}

func (o Objects) target(fn string) string {
	return o.PackageID + "::" + o.Module + "::" + fn
}

// RPC talks to a Sui full node over JSON-RPC and sends writes through a
// Signer.
type RPC struct {
	endpoint string
	http     *http.Client
	objects  Objects
	signer   Signer
	nextID   atomic.Int64
}

func NewRPC(endpoint string, objects Objects, signer Signer, timeout time.Duration) *RPC {
	return &RPC{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		objects:  objects,
		signer:   signer,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// [rpcError] implements [error]
func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPC) call(ctx context.Context, method string, result any, params ...any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: unable to read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: node returned %d", method, resp.StatusCode)
	}

	var res rpcResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return fmt.Errorf("%s: malformed response: %w", method, err)
	}
	if res.Error != nil {
		return fmt.Errorf("%s: %w", method, res.Error)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(res.Result, result)
}

// u64 accepts Move integers whether the node renders them as strings or
// numbers.
type u64 uint64

func (n *u64) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*n = u64(value)
		return nil
	case string:
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		*n = u64(parsed)
		return nil
	case nil:
		*n = 0
		return nil
	default:
		return fmt.Errorf("invalid u64 %s", data)
	}
}

type objectOptions struct {
	ShowContent bool `json:"showContent"`
	ShowDisplay bool `json:"showDisplay,omitempty"`
}

type objectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Content  *objectContent `json:"content"`
}

type objectResponse struct {
	Data  *objectData `json:"data"`
	Error any         `json:"error"`
}

func (o objectResponse) moveFields() (json.RawMessage, bool) {
	if o.Data == nil || o.Data.Content == nil || o.Data.Content.DataType != "moveObject" {
		return nil, false
	}
	return o.Data.Content.Fields, true
}

type uidField struct {
	ID string `json:"id"`
}

type cubeFields struct {
	ID        uidField `json:"id"`
	X         u64      `json:"x"`
	Y         u64      `json:"y"`
	Rarity    string   `json:"rarity"`
	Color     string   `json:"color"`
	Pattern   string   `json:"pattern"`
	Glow      bool     `json:"glow"`
	Animation string   `json:"animation"`
	MintedAt  u64      `json:"minted_at"`
}

func (f cubeFields) artifact(id, owner string) cubes.Artifact {
	rarity, err := cubes.ParseRarity(f.Rarity)
	if err != nil {
		rarity = cubes.Common
	}
	a := cubes.Artifact{
		ID:     id,
		Name:   fmt.Sprintf("Cube #%d,%d", f.X, f.Y),
		Rarity: rarity,
		Traits: cubes.Traits{
			Color:     f.Color,
			Pattern:   f.Pattern,
			Glow:      f.Glow,
			Animation: f.Animation,
		},
		Owner: owner,
	}
	if f.MintedAt > 0 {
		a.MintedAt = time.UnixMilli(int64(f.MintedAt))
	}
	return a
}

func (c *RPC) RevealedBitmap(ctx context.Context) ([]byte, error) {
	var obj objectResponse
	err := c.call(ctx, "sui_getObject", &obj,
		c.objects.GameStateID, objectOptions{ShowContent: true},
	)
	if err != nil {
		return nil, err
	}
	raw, ok := obj.moveFields()
	if !ok {
		return nil, fmt.Errorf("%w: game state %s", ErrNotFound, c.objects.GameStateID)
	}

	var fields struct {
		RevealedBitmap []int `json:"revealed_bitmap"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("malformed game state: %w", err)
	}
	bitmap := make([]byte, len(fields.RevealedBitmap))
	for i, v := range fields.RevealedBitmap {
		bitmap[i] = byte(v)
	}
	return bitmap, nil
}

func (c *RPC) OwnedArtifacts(ctx context.Context, owner string) ([]cubes.Artifact, error) {
	var page struct {
		Data []objectResponse `json:"data"`
	}
	query := map[string]any{
		"filter": map[string]string{
			"StructType": c.objects.target("CubeNFT"),
		},
		"options": objectOptions{ShowContent: true, ShowDisplay: true},
	}
	if err := c.call(ctx, "suix_getOwnedObjects", &page, owner, query, nil, nil); err != nil {
		return nil, err
	}

	artifacts := make([]cubes.Artifact, 0, len(page.Data))
	for _, obj := range page.Data {
		raw, ok := obj.moveFields()
		if !ok {
			continue
		}
		var fields cubeFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("malformed CubeNFT %s: %w", obj.Data.ObjectID, err)
		}
		artifacts = append(artifacts, fields.artifact(obj.Data.ObjectID, owner))
	}
	return artifacts, nil
}

type listingFields struct {
	Seller string `json:"seller"`
	Price  u64    `json:"price"`
	NFT    struct {
		Fields cubeFields `json:"fields"`
	} `json:"nft"`
}

// Listings finds recent NFTListed events and loads the listing wrappers they
// point at. Wrappers that are gone (sold or withdrawn) are skipped.
func (c *RPC) Listings(ctx context.Context) ([]Listing, error) {
	var events struct {
		Data []struct {
			Type       string `json:"type"`
			ParsedJSON struct {
				ListingID string `json:"listing_id"`
			} `json:"parsedJson"`
			TimestampMs u64 `json:"timestampMs"`
		} `json:"data"`
	}
	query := map[string]any{
		"MoveModule": map[string]string{
			"package": c.objects.PackageID,
			"module":  c.objects.Module,
		},
	}
	if err := c.call(ctx, "suix_queryEvents", &events, query, nil, listingsLimit, true); err != nil {
		return nil, err
	}

	var ids []string
	listedAt := make(map[string]time.Time)
	for _, e := range events.Data {
		if !strings.HasSuffix(e.Type, "::NFTListed") || e.ParsedJSON.ListingID == "" {
			continue
		}
		ids = append(ids, e.ParsedJSON.ListingID)
		if e.TimestampMs > 0 {
			listedAt[e.ParsedJSON.ListingID] = time.UnixMilli(int64(e.TimestampMs))
		}
	}
	if len(ids) == 0 {
		return []Listing{}, nil
	}

	var objects []objectResponse
	if err := c.call(ctx, "sui_multiGetObjects", &objects, ids, objectOptions{ShowContent: true}); err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(objects))
	for _, obj := range objects {
		raw, ok := obj.moveFields()
		if !ok {
			continue
		}
		var fields listingFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("malformed listing %s: %w", obj.Data.ObjectID, err)
		}
		artifact := fields.NFT.Fields.artifact(fields.NFT.Fields.ID.ID, fields.Seller)
		artifact.Listed = true
		price := toSui(uint64(fields.Price))
		artifact.Price = &price

		l := Listing{
			ID:       obj.Data.ObjectID,
			Artifact: artifact,
			Price:    price,
			Seller:   fields.Seller,
		}
		if t, ok := listedAt[l.ID]; ok {
			l.ListedAt = &t
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *RPC) Balance(ctx context.Context, owner string) (float64, error) {
	var balance struct {
		TotalBalance u64 `json:"totalBalance"`
	}
	if err := c.call(ctx, "suix_getBalance", &balance, owner); err != nil {
		return 0, err
	}
	return toSui(uint64(balance.TotalBalance)), nil
}

func (c *RPC) execute(ctx context.Context, sender, fn string, args ...Arg) (Receipt, error) {
	return c.signer.Execute(ctx, MoveCall{
		Sender:    sender,
		Target:    c.objects.target(fn),
		Arguments: args,
		GasBudget: c.objects.GasBudget,
	})
}

func (c *RPC) SubmitReveal(ctx context.Context, owner string, x, y int) (Receipt, error) {
	return c.execute(ctx, owner, "reveal_cube",
		Arg{ArgObject, c.objects.GameStateID},
		Arg{ArgObject, clockObjectID},
		Arg{ArgU64, uint64(x)},
		Arg{ArgU64, uint64(y)},
	)
}

func (c *RPC) ListArtifact(ctx context.Context, owner, artifactID string, price float64) (Receipt, error) {
	return c.execute(ctx, owner, "list_nft",
		Arg{ArgObject, artifactID},
		Arg{ArgU64, toMist(price)},
	)
}

func (c *RPC) BuyListing(ctx context.Context, buyer, listingID string, price float64) (Receipt, error) {
	return c.execute(ctx, buyer, "buy_nft",
		Arg{ArgObject, listingID},
		Arg{ArgSplitGas, toMist(price)},
	)
}
