package router

import (
	"math/big"
	"time"
)

// DefaultDeadlineTTL is how long a built call stays valid.
const DefaultDeadlineTTL = 20 * time.Minute

// Deadline returns now + ttl as unix seconds.
func Deadline(now time.Time, ttl time.Duration) *big.Int {
	return big.NewInt(now.Add(ttl).Unix())
}

// DeadlineFromBlock anchors the deadline on the chain's latest block time.
func DeadlineFromBlock(blockTime uint64, ttl time.Duration) *big.Int {
	out := new(big.Int).SetUint64(blockTime)
	return out.Add(out, big.NewInt(int64(ttl/time.Second)))
}
