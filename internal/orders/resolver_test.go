package orders

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

const (
	testChainID = uint64(1)
	testKeyHex  = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
)

var testSettlement = ethcommon.HexToAddress("0xDef1C0ded9bec7F1a1670819833240f027b25EfF")

// cannedStateReader serves the states it was built with, one per order.
type cannedStateReader struct {
	states []OrderState
}

func (r *cannedStateReader) ReadStates(_ context.Context, orders []domain.SignedNativeOrder) ([]OrderState, error) {
	return r.states, nil
}

func testKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.HexToECDSA(testKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func signedOrder(t *testing.T, key *ecdsa.PrivateKey, takerAmount, makerAmount int64, expiry uint64) domain.SignedNativeOrder {
	t.Helper()
	order := domain.NativeOrder{
		MakerToken:  ethcommon.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		TakerToken:  ethcommon.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		MakerAmount: big.NewInt(makerAmount),
		TakerAmount: big.NewInt(takerAmount),
		Maker:       crypto.PubkeyToAddress(key.PublicKey),
		Expiry:      expiry,
		Salt:        big.NewInt(42),
	}

	digest := OrderHash(testChainID, testSettlement, order)
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		t.Fatal(err)
	}

	signed := domain.SignedNativeOrder{Order: order, Type: domain.OrderTypeLimit}
	copy(signed.Signature.R[:], raw[0:32])
	copy(signed.Signature.S[:], raw[32:64])
	signed.Signature.V = raw[64] + 27
	return signed
}

func newTestResolver(reader StateReader) *Resolver {
	r := NewResolver(reader, testChainID, testSettlement)
	r.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return r
}

func TestResolveFillableLimitedByMakerInventory(t *testing.T) {
	key := testKey(t)
	// Order for 100 taker units at a 1:1 price, 40 already filled, but the
	// maker inventory only covers 30 of the remaining 60.
	order := signedOrder(t, key, 100, 100, 1_700_000_100)
	reader := &cannedStateReader{states: []OrderState{{
		Status:            StatusFillable,
		TakerFilledAmount: big.NewInt(40),
		MakerAvailable:    big.NewInt(30),
	}}}

	resolved, err := newTestResolver(reader).Resolve(context.Background(), []domain.SignedNativeOrder{order})
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 1 {
		t.Fatalf("got %d resolved orders, want 1", len(resolved))
	}
	if got := resolved[0].FillableTakerAmount; got.Cmp(big.NewInt(30)) != 0 {
		t.Errorf("fillable taker = %s, want 30", got)
	}
	if got := resolved[0].FillableMakerAmount; got.Cmp(big.NewInt(30)) != 0 {
		t.Errorf("fillable maker = %s, want 30", got)
	}
}

func TestResolveScalesMakerAmountAtOrderPrice(t *testing.T) {
	key := testKey(t)
	// 2 maker units per taker unit; 25 of 100 taker filled, ample inventory.
	order := signedOrder(t, key, 100, 200, 1_700_000_100)
	reader := &cannedStateReader{states: []OrderState{{
		Status:            StatusFillable,
		TakerFilledAmount: big.NewInt(25),
		MakerAvailable:    big.NewInt(1000),
	}}}

	resolved, err := newTestResolver(reader).Resolve(context.Background(), []domain.SignedNativeOrder{order})
	if err != nil {
		t.Fatal(err)
	}
	if got := resolved[0].FillableTakerAmount; got.Cmp(big.NewInt(75)) != 0 {
		t.Errorf("fillable taker = %s, want 75", got)
	}
	if got := resolved[0].FillableMakerAmount; got.Cmp(big.NewInt(150)) != 0 {
		t.Errorf("fillable maker = %s, want 150", got)
	}
}

func TestResolveUnfillableOrdersComeBackZero(t *testing.T) {
	key := testKey(t)

	expired := signedOrder(t, key, 100, 100, 1_600_000_000)
	cancelled := signedOrder(t, key, 100, 100, 1_700_000_100)
	badSig := signedOrder(t, key, 100, 100, 1_700_000_100)
	badSig.Signature.R[0] ^= 0xff

	orders := []domain.SignedNativeOrder{expired, cancelled, badSig}
	reader := &cannedStateReader{states: []OrderState{
		{Status: StatusFillable, MakerAvailable: big.NewInt(1000)},
		{Status: StatusCancelled},
		{Status: StatusFillable, MakerAvailable: big.NewInt(1000)},
	}}

	resolved, err := newTestResolver(reader).Resolve(context.Background(), orders)
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != len(orders) {
		t.Fatalf("got %d resolved orders, want %d", len(resolved), len(orders))
	}
	for i, r := range resolved {
		if r.IsFillable() {
			t.Errorf("order %d resolved as fillable, want zero amounts", i)
		}
	}
}

func TestVerifyOrderSignatureRecoversMaker(t *testing.T) {
	key := testKey(t)
	order := signedOrder(t, key, 100, 100, 1_700_000_100)

	if !VerifyOrderSignature(testChainID, testSettlement, order) {
		t.Fatal("valid signature did not verify")
	}

	tampered := order
	tampered.Order.MakerAmount = big.NewInt(999)
	if VerifyOrderSignature(testChainID, testSettlement, tampered) {
		t.Fatal("signature verified over tampered order")
	}

	var unsigned domain.SignedNativeOrder
	unsigned.Order = order.Order
	if VerifyOrderSignature(testChainID, testSettlement, unsigned) {
		t.Fatal("empty signature verified")
	}
}

func TestOrderHashDependsOnDomain(t *testing.T) {
	key := testKey(t)
	order := signedOrder(t, key, 100, 100, 1_700_000_100).Order

	h1 := OrderHash(testChainID, testSettlement, order)
	h2 := OrderHash(137, testSettlement, order)
	h3 := OrderHash(testChainID, ethcommon.HexToAddress("0x0000000000000000000000000000000000000001"), order)

	if h1 == h2 {
		t.Error("order hash identical across chain IDs")
	}
	if h1 == h3 {
		t.Error("order hash identical across settlement contracts")
	}
}
