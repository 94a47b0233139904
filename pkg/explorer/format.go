package explorer

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/macropower/chainview/pkg/chain"
	"github.com/macropower/chainview/pkg/table"
)

// satsPerCoin is the number of base units in one XEC.
const satsPerCoin = 100

// Formatter renders records as table rows.
type Formatter struct {
	// Now is the reference time of ages. Defaults to [time.Now].
	Now     func() time.Time
	printer *message.Printer
}

// NewFormatter creates a [Formatter] that groups digits the way tag does.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{
		Now:     time.Now,
		printer: message.NewPrinter(tag),
	}
}

var (
	blockColumns = []table.Column{
		{Title: "Hash", Width: 20},
		{Title: "Height", Width: 10},
		{Title: "Age", Width: 14},
		{Title: "Txs", Width: 7},
		{Title: "Size", Width: 9},
		{Title: "Difficulty", Width: 10},
	}

	txColumns = []table.Column{
		{Title: "Tx Hash", Width: 20},
		{Title: "Block", Width: 10},
		{Title: "Age", Width: 14},
		{Title: "In", Width: 4},
		{Title: "Out", Width: 4},
		{Title: "Size", Width: 9},
		{Title: "Amount", Width: 18},
	}

	utxoColumns = []table.Column{
		{Title: "Outpoint", Width: 24},
		{Title: "Block", Width: 10},
		{Title: "Amount", Width: 18},
		{Title: "Tokens", Width: 10},
		{Title: "Kind", Width: 8},
	}
)

// Block formats b as a row of the blocks table.
func (f *Formatter) Block(b chain.Block) table.Row {
	return table.Row{
		b.Hash,
		f.printer.Sprintf("%d", b.Height),
		f.age(b.Timestamp),
		f.printer.Sprintf("%d", b.NumTxs),
		humanize.Bytes(uint64(max(b.Size, 0))),
		humanize.SIWithDigits(b.Difficulty, 2, ""),
	}
}

// Tx formats tx as a row of the transactions table.
func (f *Formatter) Tx(tx chain.Tx) table.Row {
	block := "mempool"
	if tx.BlockHeight != nil {
		block = f.printer.Sprintf("%d", *tx.BlockHeight)
	}

	hash := tx.TxHash
	if tx.IsCoinbase {
		hash = "⛏ " + hash
	}

	return table.Row{
		hash,
		block,
		f.age(tx.Timestamp),
		strconv.Itoa(tx.NumInputs),
		strconv.Itoa(tx.NumOutputs),
		humanize.Bytes(uint64(max(tx.Size, 0))),
		f.amount(tx.Stats.DeltaSats, true),
	}
}

// Utxo formats u as a row of the outpoints table.
func (f *Formatter) Utxo(u chain.Utxo) table.Row {
	kind := ""

	switch {
	case u.IsMintBaton:
		kind = "baton"
	case u.TokenAmount > 0:
		kind = "token"
	case u.IsCoinbase:
		kind = "coinbase"
	}

	tokens := ""
	if u.TokenAmount > 0 {
		tokens = f.printer.Sprintf("%d", u.TokenAmount)
	}

	return table.Row{
		u.TxHash + ":" + strconv.Itoa(u.OutIdx),
		f.printer.Sprintf("%d", u.BlockHeight),
		f.amount(u.SatsAmount, false),
		tokens,
		kind,
	}
}

func (f *Formatter) amount(sats int64, signed bool) string {
	s := f.printer.Sprintf("%.2f XEC", float64(sats)/satsPerCoin)
	if signed && sats > 0 {
		return "+" + s
	}

	return s
}

func (f *Formatter) age(ts int64) string {
	return humanize.RelTime(time.Unix(ts, 0), f.Now(), "ago", "from now")
}
