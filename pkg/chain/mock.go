package chain

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMockTip is the tip height of a [Mock] created with a zero tip.
	DefaultMockTip = 850_000

	blockInterval = 600
	genesisTime   = 1231006505
)

// Mock is a deterministic in-memory [Source]. Every record is derived from
// the seed and its position, so the same query always returns the same
// records.
type Mock struct {
	// Delay is added to every call, to make loading states visible.
	Delay     time.Duration
	Seed      uint64
	TipHeight int
}

// NewMock creates a [Mock]. A non-positive tip uses [DefaultMockTip].
func NewMock(seed uint64, tipHeight int) *Mock {
	if tipHeight <= 0 {
		tipHeight = DefaultMockTip
	}

	return &Mock{Seed: seed, TipHeight: tipHeight}
}

// Info implements [Source].
func (m *Mock) Info(ctx context.Context) (Info, error) {
	if err := m.wait(ctx); err != nil {
		return Info{}, err
	}

	return Info{TipHeight: m.TipHeight, TipHash: m.Block(m.TipHeight).Hash}, nil
}

// Block returns the block at height.
func (m *Mock) Block(height int) Block {
	r := m.rng("block", uint64(height))

	return Block{
		Hash:       m.hash("block", height),
		Height:     height,
		Timestamp:  genesisTime + int64(height)*blockInterval + r.Int64N(blockInterval),
		Difficulty: 1e5 + r.Float64()*1e6,
		Size:       250 + r.IntN(2_000_000),
		NumTxs:     1 + r.IntN(3000),
	}
}

// Blocks implements [Source].
func (m *Mock) Blocks(ctx context.Context, startHeight, endHeight int) ([]Block, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	startHeight = max(startHeight, 0)
	endHeight = min(endHeight, m.TipHeight)

	if endHeight < startHeight {
		return nil, nil
	}

	blocks := make([]Block, 0, endHeight-startHeight+1)
	for h := endHeight; h >= startHeight; h-- {
		blocks = append(blocks, m.Block(h))
	}

	return blocks, nil
}

// AddressTxs implements [Source].
func (m *Mock) AddressTxs(ctx context.Context, address string, page, take int) ([]Tx, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	a, err := m.address(address)
	if err != nil {
		return nil, err
	}

	lo := max(page, 0) * max(take, 0)
	hi := min(lo+max(take, 0), a.NumTxs)

	if lo >= hi {
		return nil, nil
	}

	step := max(m.TipHeight/a.NumTxs, 1)

	txs := make([]Tx, 0, hi-lo)
	for i := lo; i < hi; i++ {
		r := m.rng("tx:"+address, uint64(i))

		height := max(m.TipHeight-i*step, 0)
		block := m.Block(height)

		inputs := 1 + r.IntN(8)
		outputs := 1 + r.IntN(8)
		in := r.Int64N(1e10)
		out := in - r.Int64N(max(in/1000, 1))

		txs = append(txs, Tx{
			TxHash:      m.hash("tx", address, i),
			BlockHeight: &height,
			Timestamp:   block.Timestamp,
			IsCoinbase:  height%97 == 0 && i%5 == 0,
			Size:        100 + 150*inputs + 34*outputs,
			NumInputs:   inputs,
			NumOutputs:  outputs,
			Stats: TxStats{
				SatsInput:  in,
				SatsOutput: out,
				DeltaSats:  r.Int64N(2e9) - 1e9,
			},
		})
	}

	return txs, nil
}

// AddressUtxos implements [Source].
func (m *Mock) AddressUtxos(ctx context.Context, address string) ([]Utxo, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	a, err := m.address(address)
	if err != nil {
		return nil, err
	}

	return m.utxos(address, a.NumUtxos), nil
}

// AddressSummary implements [Source].
func (m *Mock) AddressSummary(ctx context.Context, address string) (Address, error) {
	if err := m.wait(ctx); err != nil {
		return Address{}, err
	}

	return m.address(address)
}

func (m *Mock) address(address string) (Address, error) {
	if address == "" {
		return Address{}, fmt.Errorf("address %q: %w", address, ErrNotFound)
	}

	r := m.rng("address", fnvHash(address))

	a := Address{
		Address: address,
		NumTxs:  1 + r.IntN(5000),
	}
	a.NumUtxos = 1 + r.IntN(min(a.NumTxs, 3000))

	for _, u := range m.utxos(address, a.NumUtxos) {
		a.BalanceSats += u.SatsAmount
	}

	return a, nil
}

func (m *Mock) utxos(address string, n int) []Utxo {
	utxos := make([]Utxo, 0, n)
	for i := range n {
		r := m.rng("utxo:"+address, uint64(i))

		u := Utxo{
			TxHash:      m.hash("utxo", address, i),
			OutIdx:      r.IntN(4),
			SatsAmount:  546 + r.Int64N(1e9),
			BlockHeight: r.IntN(m.TipHeight + 1),
		}

		switch r.IntN(20) {
		case 0:
			u.IsCoinbase = true
		case 1:
			u.TokenAmount = r.Uint64N(1e6)
		case 2:
			u.IsMintBaton = true
		}

		utxos = append(utxos, u)
	}

	return utxos
}

func (m *Mock) rng(kind string, key uint64) *rand.Rand {
	return rand.New(rand.NewPCG(m.Seed^fnvHash(kind), key)) //nolint:gosec // Mock data.
}

func (m *Mock) hash(parts ...any) string {
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], m.Seed)

	h := sha256.New()
	h.Write(seed[:])
	fmt.Fprint(h, parts...)

	return hex.EncodeToString(h.Sum(nil))
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(m.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))

	return h.Sum64()
}
