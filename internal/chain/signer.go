package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ArgKind string

const (
	ArgObject ArgKind = "object"
	ArgU64    ArgKind = "u64"
	// ArgSplitGas splits Value MIST off the gas coin and passes the new coin.
	ArgSplitGas ArgKind = "split_gas"
)

type Arg struct {
	Kind  ArgKind `json:"kind"`
	Value any     `json:"value"`
}

type MoveCall struct {
	Sender    string `json:"sender"`
	Target    string `json:"target"`
	Arguments []Arg  `json:"arguments"`
	GasBudget uint64 `json:"gas_budget"`
}

// Signer signs and executes move calls on behalf of a hunter.
type Signer interface {
	Execute(ctx context.Context, call MoveCall) (Receipt, error)
}

// Relay is a Signer backed by the wallet bridge, which holds the hunter's
// keys and answers with the execution effects.
type Relay struct {
	url  string
	http *http.Client
}

func NewRelay(url string, timeout time.Duration) *Relay {
	return &Relay{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

type relayResponse struct {
	Digest  string   `json:"digest"`
	Status  string   `json:"status"`
	Error   string   `json:"error"`
	Created []string `json:"created"`
}

func (r *Relay) Execute(ctx context.Context, call MoveCall) (Receipt, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return Receipt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/execute", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("unable to reach relay: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Receipt{}, fmt.Errorf("unable to read relay response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return Receipt{}, fmt.Errorf("relay returned %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	var res relayResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return Receipt{}, fmt.Errorf("malformed relay response: %w", err)
	}
	if res.Status != "success" {
		msg := res.Error
		if msg == "" {
			msg = res.Status
		}
		return Receipt{Digest: res.Digest}, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	receipt := Receipt{Digest: res.Digest}
	if len(res.Created) > 0 {
		receipt.ObjectID = res.Created[0]
	}
	return receipt, nil
}
