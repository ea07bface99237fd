// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import "math/big"

// Liquidity wraps a position's liquidity amount. Solana's CLMM program
// stores liquidity as u128, which does not fit in a native Go integer;
// Liquidity carries the value as a big.Int and only converts to float64
// at the point scoring needs a real number, per the large-integer-
// arithmetic note in the design notes.
type Liquidity struct {
	v *big.Int
}

// ZeroLiquidity is the liquidity value for an empty position.
var ZeroLiquidity = Liquidity{v: new(big.Int)}

// NewLiquidity builds a Liquidity from a uint64.
func NewLiquidity(v uint64) Liquidity {
	return Liquidity{v: new(big.Int).SetUint64(v)}
}

// NewLiquidityFromBigInt builds a Liquidity from an existing big.Int,
// copying it so later mutation of the argument cannot alias the value.
func NewLiquidityFromBigInt(v *big.Int) Liquidity {
	if v == nil {
		return ZeroLiquidity
	}
	return Liquidity{v: new(big.Int).Set(v)}
}

// NewLiquidityFromString parses a base-10 string (as produced by chain
// adapters that read u128 account fields) into a Liquidity.
func NewLiquidityFromString(s string) (Liquidity, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return ZeroLiquidity, false
	}
	return Liquidity{v: v}, true
}

// IsZero reports whether the liquidity amount is zero.
func (l Liquidity) IsZero() bool {
	return l.v == nil || l.v.Sign() == 0
}

// Float64 converts the liquidity to a float64 for use in score
// arithmetic. The big.Int intermediate avoids precision loss for values
// beyond 64 bits before the unavoidable conversion to a real number.
func (l Liquidity) Float64() float64 {
	if l.v == nil {
		return 0
	}
	f := new(big.Float).SetInt(l.v)
	out, _ := f.Float64()
	return out
}

// String implements fmt.Stringer.
func (l Liquidity) String() string {
	if l.v == nil {
		return "0"
	}
	return l.v.String()
}
