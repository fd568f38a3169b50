// Package common contains common constants and variables used across services
package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ZeroAddress = common.Address{}

	// MaxUint256 is the largest value a uint256 return slot can carry.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// OneEther is the wei scaling unit used when converting gas cost into
	// output-token amounts.
	OneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	OneGwei = big.NewInt(1_000_000_000)
)
