package chain

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrBadStatus = errors.New("unexpected status")
	ErrDecode    = errors.New("decode response")
)

// Info describes the chain tip.
type Info struct {
	TipHash   string `json:"tipHash"`
	TipHeight int    `json:"tipHeight"`
}

// Block is one row of the blocks table.
type Block struct {
	Hash       string  `json:"hash"`
	Height     int     `json:"height"`
	Timestamp  int64   `json:"timestamp"`
	Difficulty float64 `json:"difficulty"`
	Size       int     `json:"size"`
	NumTxs     int     `json:"numTxs"`
}

// TxStats summarizes the value moved by a transaction, relative to the
// queried address when there is one.
type TxStats struct {
	SatsInput  int64 `json:"satsInput"`
	SatsOutput int64 `json:"satsOutput"`
	DeltaSats  int64 `json:"deltaSats"`
}

// Tx is one row of the address transactions table. BlockHeight is nil for
// unconfirmed transactions.
type Tx struct {
	BlockHeight *int    `json:"blockHeight"`
	TxHash      string  `json:"txHash"`
	Stats       TxStats `json:"stats"`
	Timestamp   int64   `json:"timestamp"`
	Size        int     `json:"size"`
	NumInputs   int     `json:"numInputs"`
	NumOutputs  int     `json:"numOutputs"`
	IsCoinbase  bool    `json:"isCoinbase"`
}

// Utxo is one unspent output held by an address.
type Utxo struct {
	TxHash      string `json:"txHash"`
	OutIdx      int    `json:"outIdx"`
	SatsAmount  int64  `json:"satsAmount"`
	TokenAmount uint64 `json:"tokenAmount"`
	BlockHeight int    `json:"blockHeight"`
	IsCoinbase  bool   `json:"isCoinbase"`
	IsMintBaton bool   `json:"isMintBaton"`
}

// Address summarizes the holdings of one address.
type Address struct {
	Address     string `json:"address"`
	NumTxs      int    `json:"numTxs"`
	NumUtxos    int    `json:"numUtxos"`
	BalanceSats int64  `json:"balanceSats"`
}

// Source provides explorer records.
type Source interface {
	Info(ctx context.Context) (Info, error)
	// Blocks returns the blocks with heights in [startHeight, endHeight],
	// newest first. An inverted range returns no blocks.
	Blocks(ctx context.Context, startHeight, endHeight int) ([]Block, error)
	// AddressTxs returns one page of the address history, newest first.
	// page is zero-based.
	AddressTxs(ctx context.Context, address string, page, take int) ([]Tx, error)
	AddressUtxos(ctx context.Context, address string) ([]Utxo, error)
	AddressSummary(ctx context.Context, address string) (Address, error)
}

// Envelope is the body of every API response.
type Envelope[T any] struct {
	Data T `json:"data"`
}
