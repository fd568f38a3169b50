// Package report renders the audit trail of a quote: every source the
// optimizer considered and the fills it actually delivered.
package report

import (
	"encoding/json"
	"math/big"

	"github.com/bytedance/sonic"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

// Entry is the reporting projection of one sample, fill or native order.
type Entry struct {
	LiquiditySource domain.Source   `json:"liquiditySource"`
	MakerAmount     *big.Int        `json:"makerAmount"`
	TakerAmount     *big.Int        `json:"takerAmount"`
	FillData        json.RawMessage `json:"fillData,omitempty"`
	IsRFQ           bool            `json:"isRfq,omitempty"`
	MakerURI        string          `json:"makerUri,omitempty"`
	ComparisonPrice *float64        `json:"comparisonPrice,omitempty"`
}

// IndexedEntry is an Entry placed into a report.
type IndexedEntry struct {
	Entry
	QuoteEntryIndex int  `json:"quoteEntryIndex"`
	IsDelivered     bool `json:"isDelivered"`
}

// QuoteReport is the externally observable audit artifact of one quote. It
// is deterministic given the same sampled data and chosen path.
type QuoteReport struct {
	SourcesConsidered []IndexedEntry `json:"sourcesConsidered"`
	SourcesDelivered  []IndexedEntry `json:"sourcesDelivered"`
}

// Inputs collects everything that feeds one report, in the deterministic
// order the pipeline produced it.
type Inputs struct {
	Side             domain.Side
	Samples          []domain.DexSample
	TwoHopSamples    []domain.DexSample
	NativeOrders     []domain.NativeOrderWithFillableAmounts
	IndicativeQuotes []domain.IndicativeQuote
	DeliveredFills   []*domain.Fill
	ComparisonPrice  *float64
}

// Generate builds the report. Considered entries are indexed in input
// order: direct samples, two-hop samples, native orders, indicative quotes.
// Delivered entries mirror the chosen path's fill order.
func Generate(in Inputs) (*QuoteReport, error) {
	considered := make([]IndexedEntry, 0,
		len(in.Samples)+len(in.TwoHopSamples)+len(in.NativeOrders)+len(in.IndicativeQuotes))

	appendConsidered := func(e Entry, err error) error {
		if err != nil {
			return err
		}
		e.ComparisonPrice = in.ComparisonPrice
		considered = append(considered, IndexedEntry{
			Entry:           e,
			QuoteEntryIndex: len(considered),
			IsDelivered:     false,
		})
		return nil
	}

	for _, s := range in.Samples {
		if err := appendConsidered(sampleEntry(in.Side, s)); err != nil {
			return nil, err
		}
	}
	for _, s := range in.TwoHopSamples {
		if err := appendConsidered(sampleEntry(in.Side, s)); err != nil {
			return nil, err
		}
	}
	for _, o := range in.NativeOrders {
		if err := appendConsidered(nativeOrderEntry(o)); err != nil {
			return nil, err
		}
	}
	for _, q := range in.IndicativeQuotes {
		if err := appendConsidered(indicativeEntry(q)); err != nil {
			return nil, err
		}
	}

	delivered := make([]IndexedEntry, 0, len(in.DeliveredFills))
	for _, f := range in.DeliveredFills {
		e, err := fillEntry(in.Side, f)
		if err != nil {
			return nil, err
		}
		e.ComparisonPrice = in.ComparisonPrice
		delivered = append(delivered, IndexedEntry{
			Entry:           e,
			QuoteEntryIndex: len(delivered),
			IsDelivered:     true,
		})
	}

	return &QuoteReport{
		SourcesConsidered: considered,
		SourcesDelivered:  delivered,
	}, nil
}

func marshalFillData(fd domain.FillData) (json.RawMessage, error) {
	if fd == nil {
		return nil, nil
	}
	return sonic.Marshal(fd)
}

// splitAmounts maps an (input, output) pair to (taker, maker) for the side.
func splitAmounts(side domain.Side, input, output *big.Int) (taker, maker *big.Int) {
	if side == domain.SideSell {
		return input, output
	}
	return output, input
}

func sampleEntry(side domain.Side, s domain.DexSample) (Entry, error) {
	fd, err := marshalFillData(s.FillData)
	if err != nil {
		return Entry{}, err
	}
	taker, maker := splitAmounts(side, s.Input, s.Output)
	return Entry{
		LiquiditySource: s.Source,
		MakerAmount:     maker,
		TakerAmount:     taker,
		FillData:        fd,
	}, nil
}

func fillEntry(side domain.Side, f *domain.Fill) (Entry, error) {
	fd, err := marshalFillData(f.FillData)
	if err != nil {
		return Entry{}, err
	}
	taker, maker := splitAmounts(side, f.Input, f.Output)
	entry := Entry{
		LiquiditySource: f.Source,
		MakerAmount:     maker,
		TakerAmount:     taker,
		FillData:        fd,
	}
	if native, ok := f.FillData.(domain.NativeFillData); ok {
		entry.IsRFQ = native.Order.Type == domain.OrderTypeRFQ || native.Order.Type == domain.OrderTypeOTC
		entry.MakerURI = native.MakerURI
	}
	return entry, nil
}

func nativeOrderEntry(o domain.NativeOrderWithFillableAmounts) (Entry, error) {
	fd, err := marshalFillData(domain.NativeFillData{Order: o.SignedNativeOrder, MakerURI: o.MakerURI})
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		LiquiditySource: domain.SourceNative,
		MakerAmount:     o.FillableMakerAmount,
		TakerAmount:     o.FillableTakerAmount,
		FillData:        fd,
		IsRFQ:           o.Type == domain.OrderTypeRFQ || o.Type == domain.OrderTypeOTC,
		MakerURI:        o.MakerURI,
	}, nil
}

func indicativeEntry(q domain.IndicativeQuote) (Entry, error) {
	fd, err := sonic.Marshal(q)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		LiquiditySource: domain.SourceNative,
		MakerAmount:     q.MakerAmount,
		TakerAmount:     q.TakerAmount,
		FillData:        fd,
		IsRFQ:           true,
		MakerURI:        q.MakerURI,
	}, nil
}
