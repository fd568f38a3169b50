package report

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

func sample(source domain.Source, input, output int64) domain.DexSample {
	return domain.DexSample{
		Source: source,
		Input:  big.NewInt(input),
		Output: big.NewInt(output),
		FillData: domain.AMMFillData{
			Router: ethcommon.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		},
	}
}

func nativeOrder(typ domain.OrderType, makerURI string) domain.NativeOrderWithFillableAmounts {
	return domain.NativeOrderWithFillableAmounts{
		SignedNativeOrder:   domain.SignedNativeOrder{Type: typ},
		FillableTakerAmount: big.NewInt(100),
		FillableMakerAmount: big.NewInt(95),
		MakerURI:            makerURI,
	}
}

func TestGenerateIndexesConsideredInInputOrder(t *testing.T) {
	in := Inputs{
		Side:          domain.SideSell,
		Samples:       []domain.DexSample{sample(domain.SourceUniswapV2, 100, 95), sample(domain.SourceSushiSwap, 100, 93)},
		TwoHopSamples: []domain.DexSample{sample(domain.SourceMultiHop, 100, 96)},
		NativeOrders:  []domain.NativeOrderWithFillableAmounts{nativeOrder(domain.OrderTypeLimit, "")},
		IndicativeQuotes: []domain.IndicativeQuote{{
			MakerAmount: big.NewInt(97),
			TakerAmount: big.NewInt(100),
			MakerURI:    "https://maker.example",
		}},
	}

	report, err := Generate(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.SourcesConsidered) != 5 {
		t.Fatalf("got %d considered entries, want 5", len(report.SourcesConsidered))
	}

	wantSources := []domain.Source{
		domain.SourceUniswapV2,
		domain.SourceSushiSwap,
		domain.SourceMultiHop,
		domain.SourceNative,
		domain.SourceNative,
	}
	for i, e := range report.SourcesConsidered {
		if e.QuoteEntryIndex != i {
			t.Errorf("entry %d: index = %d", i, e.QuoteEntryIndex)
		}
		if e.IsDelivered {
			t.Errorf("entry %d: considered entry marked delivered", i)
		}
		if e.LiquiditySource != wantSources[i] {
			t.Errorf("entry %d: source = %s, want %s", i, e.LiquiditySource, wantSources[i])
		}
	}
	if len(report.SourcesDelivered) != 0 {
		t.Errorf("got %d delivered entries, want 0", len(report.SourcesDelivered))
	}
}

func TestGenerateDeliveredMirrorsPathFills(t *testing.T) {
	fills := []*domain.Fill{
		{Source: domain.SourceUniswapV2, Input: big.NewInt(60), Output: big.NewInt(57)},
		{
			Source: domain.SourceNative,
			Input:  big.NewInt(40),
			Output: big.NewInt(39),
			FillData: domain.NativeFillData{
				Order:    domain.SignedNativeOrder{Type: domain.OrderTypeRFQ},
				MakerURI: "https://maker.example",
			},
		},
	}
	report, err := Generate(Inputs{Side: domain.SideSell, DeliveredFills: fills})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.SourcesDelivered) != 2 {
		t.Fatalf("got %d delivered entries, want 2", len(report.SourcesDelivered))
	}

	first := report.SourcesDelivered[0]
	if first.QuoteEntryIndex != 0 || !first.IsDelivered {
		t.Errorf("first delivered entry = index %d delivered %t", first.QuoteEntryIndex, first.IsDelivered)
	}
	if first.TakerAmount.Cmp(big.NewInt(60)) != 0 || first.MakerAmount.Cmp(big.NewInt(57)) != 0 {
		t.Errorf("first amounts = taker %s maker %s, want 60/57", first.TakerAmount, first.MakerAmount)
	}

	second := report.SourcesDelivered[1]
	if !second.IsRFQ {
		t.Error("RFQ fill not flagged")
	}
	if second.MakerURI != "https://maker.example" {
		t.Errorf("maker URI = %q", second.MakerURI)
	}
}

func TestGenerateBuySideSwapsTakerAndMaker(t *testing.T) {
	// Buying: the input axis is the bought amount, so it lands on the maker
	// side of the entry.
	in := Inputs{
		Side:           domain.SideBuy,
		Samples:        []domain.DexSample{sample(domain.SourceUniswapV2, 100, 105)},
		DeliveredFills: []*domain.Fill{{Source: domain.SourceUniswapV2, Input: big.NewInt(100), Output: big.NewInt(105)}},
	}
	report, err := Generate(in)
	if err != nil {
		t.Fatal(err)
	}

	considered := report.SourcesConsidered[0]
	if considered.MakerAmount.Cmp(big.NewInt(100)) != 0 || considered.TakerAmount.Cmp(big.NewInt(105)) != 0 {
		t.Errorf("considered amounts = maker %s taker %s, want 100/105", considered.MakerAmount, considered.TakerAmount)
	}
	delivered := report.SourcesDelivered[0]
	if delivered.MakerAmount.Cmp(big.NewInt(100)) != 0 || delivered.TakerAmount.Cmp(big.NewInt(105)) != 0 {
		t.Errorf("delivered amounts = maker %s taker %s, want 100/105", delivered.MakerAmount, delivered.TakerAmount)
	}
}

func TestGenerateFlagsRFQEntries(t *testing.T) {
	in := Inputs{
		Side: domain.SideSell,
		NativeOrders: []domain.NativeOrderWithFillableAmounts{
			nativeOrder(domain.OrderTypeLimit, ""),
			nativeOrder(domain.OrderTypeRFQ, "https://rfq.example"),
			nativeOrder(domain.OrderTypeOTC, "https://otc.example"),
		},
		IndicativeQuotes: []domain.IndicativeQuote{{
			MakerAmount: big.NewInt(1),
			TakerAmount: big.NewInt(1),
			MakerURI:    "https://indicative.example",
		}},
	}
	report, err := Generate(in)
	if err != nil {
		t.Fatal(err)
	}

	wantRFQ := []bool{false, true, true, true}
	for i, e := range report.SourcesConsidered {
		if e.IsRFQ != wantRFQ[i] {
			t.Errorf("entry %d: isRfq = %t, want %t", i, e.IsRFQ, wantRFQ[i])
		}
	}
	if got := report.SourcesConsidered[1].MakerURI; got != "https://rfq.example" {
		t.Errorf("rfq maker URI = %q", got)
	}
}

func TestGeneratePropagatesComparisonPrice(t *testing.T) {
	price := 1.05
	in := Inputs{
		Side:            domain.SideSell,
		Samples:         []domain.DexSample{sample(domain.SourceUniswapV2, 100, 95)},
		DeliveredFills:  []*domain.Fill{{Source: domain.SourceUniswapV2, Input: big.NewInt(100), Output: big.NewInt(95)}},
		ComparisonPrice: &price,
	}
	report, err := Generate(in)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.SourcesConsidered[0].ComparisonPrice; got == nil || *got != price {
		t.Errorf("considered comparison price = %v, want %f", got, price)
	}
	if got := report.SourcesDelivered[0].ComparisonPrice; got == nil || *got != price {
		t.Errorf("delivered comparison price = %v, want %f", got, price)
	}
}
