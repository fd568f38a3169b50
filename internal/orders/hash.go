// Package orders resolves signed native orders (limit, RFQ, OTC) into the
// amounts that are actually fillable against current on-chain state.
package orders

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/0xProject/protocol-sub016/internal/domain"
)

const (
	signatureDomainName    = "Settlement"
	signatureDomainVersion = "1"
)

var (
	eip712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	nativeOrderTypeHash = crypto.Keccak256Hash([]byte(
		"NativeOrder(address makerToken,address takerToken,uint256 makerAmount,uint256 takerAmount,address maker,address taker,uint256 expiry,uint256 salt)"))

	bytes32Ty, _ = abi.NewType("bytes32", "", nil)
	addressTy, _ = abi.NewType("address", "", nil)
	uint256Ty, _ = abi.NewType("uint256", "", nil)
)

// DomainSeparator is the EIP-712 domain separator of the settlement contract
// on the given chain.
func DomainSeparator(chainID uint64, settlement ethcommon.Address) []byte {
	args := abi.Arguments{
		{Type: bytes32Ty},
		{Type: bytes32Ty},
		{Type: bytes32Ty},
		{Type: uint256Ty},
		{Type: addressTy},
	}
	encoded, _ := args.Pack(
		eip712DomainTypeHash,
		crypto.Keccak256Hash([]byte(signatureDomainName)),
		crypto.Keccak256Hash([]byte(signatureDomainVersion)),
		new(big.Int).SetUint64(chainID),
		settlement,
	)
	return crypto.Keccak256(encoded)
}

// OrderHash is the EIP-712 digest a maker signs for the given order.
func OrderHash(chainID uint64, settlement ethcommon.Address, order domain.NativeOrder) ethcommon.Hash {
	args := abi.Arguments{
		{Type: bytes32Ty},
		{Type: addressTy},
		{Type: addressTy},
		{Type: uint256Ty},
		{Type: uint256Ty},
		{Type: addressTy},
		{Type: addressTy},
		{Type: uint256Ty},
		{Type: uint256Ty},
	}
	salt := order.Salt
	if salt == nil {
		salt = big.NewInt(0)
	}
	encoded, _ := args.Pack(
		nativeOrderTypeHash,
		order.MakerToken,
		order.TakerToken,
		order.MakerAmount,
		order.TakerAmount,
		order.Maker,
		order.Taker,
		new(big.Int).SetUint64(order.Expiry),
		salt,
	)
	structHash := crypto.Keccak256(encoded)

	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01},
		DomainSeparator(chainID, settlement),
		structHash,
	)
}

// RecoverSigner returns the address that produced the signature over the
// given order digest.
func RecoverSigner(digest ethcommon.Hash, sig domain.Signature) (ethcommon.Address, error) {
	raw := make([]byte, 65)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	v := sig.V
	if v >= 27 {
		v -= 27
	}
	raw[64] = v

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return ethcommon.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyOrderSignature reports whether the order's signature recovers to its
// maker.
func VerifyOrderSignature(chainID uint64, settlement ethcommon.Address, o domain.SignedNativeOrder) bool {
	if o.Signature.IsEmpty() {
		return false
	}
	signer, err := RecoverSigner(OrderHash(chainID, settlement, o.Order), o.Signature)
	if err != nil {
		return false
	}
	return signer == o.Order.Maker
}
