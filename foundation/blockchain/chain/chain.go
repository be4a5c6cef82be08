// Package chain implements assembly and validation of the block chain.
// A chain is a persistent sequence: operations that grow it return a new
// value and never touch the blocks, or the slice, the caller handed in.
package chain

import (
	"context"
	"errors"
	"time"

	"github.com/powlab/powchain/foundation/blockchain/block"
	"github.com/powlab/powchain/foundation/blockchain/digest"
)

// ErrEmptyChain is returned when extending a chain that has no genesis
// block yet.
var ErrEmptyChain = errors.New("chain is empty, mine a genesis block first")

// Chain is an append-only ordered sequence of mined blocks.
type Chain []block.Block

// Latest returns the last block in the chain and false when the chain is
// empty.
func (c Chain) Latest() (block.Block, bool) {
	if len(c) == 0 {
		return block.Block{}, false
	}
	return c[len(c)-1], true
}

// =============================================================================

// Genesis mines the first block of a new chain: index 0, the fixed genesis
// payload and the sentinel previous hash. The block's duration field is
// stamped with the wall clock time the nonce search took.
func Genesis(ctx context.Context, d digest.Digester, algorithm string, difficulty uint) (block.Block, error) {
	b, err := block.New(d, algorithm, 0, time.Now().UTC().UnixMilli(), block.GenesisTransaction, block.GenesisPrevBlockHash, 0)
	if err != nil {
		return block.Block{}, err
	}

	return mineAndStamp(ctx, d, algorithm, difficulty, b)
}

// Add mines a block carrying the transaction payload and returns a new
// chain with that block appended. The input chain is copied, not mutated,
// so references to the previous chain value stay valid.
func Add(ctx context.Context, d digest.Digester, c Chain, transaction string, algorithm string, difficulty uint) (Chain, error) {
	last, exists := c.Latest()
	if !exists {
		return nil, ErrEmptyChain
	}

	b, err := block.New(d, algorithm, last.Index+1, time.Now().UTC().UnixMilli(), transaction, last.Hash, 0)
	if err != nil {
		return nil, err
	}

	mined, err := mineAndStamp(ctx, d, algorithm, difficulty, b)
	if err != nil {
		return nil, err
	}

	nc := make(Chain, len(c), len(c)+1)
	copy(nc, c)

	return append(nc, mined), nil
}

// mineAndStamp times the nonce search and stamps the mined block's
// duration in milliseconds.
func mineAndStamp(ctx context.Context, d digest.Digester, algorithm string, difficulty uint, b block.Block) (block.Block, error) {
	t := time.Now()

	mined, err := block.Mine(ctx, d, algorithm, difficulty, b)
	if err != nil {
		return block.Block{}, err
	}

	mined.Duration = float64(time.Since(t)) / float64(time.Millisecond)

	return mined, nil
}

// =============================================================================

// Verdict reports the validation outcome for a single block.
type Verdict struct {
	BlockID uint64 `json:"blockId"`
	OK      bool   `json:"ok"`
}

// Validate walks the chain in order, recomputing each block's hash with
// the specified algorithm and checking its linkage to the previous block.
// The genesis block is trusted unconditionally since it has no predecessor
// to link against. Once any block fails, every later block is reported
// broken without recomputation: a broken link invalidates everything built
// on top of it, even blocks that are individually self consistent.
//
// An empty chain yields an empty report. Digester failures propagate
// unchanged.
func Validate(d digest.Digester, algorithm string, c Chain) ([]Verdict, error) {
	report := make([]Verdict, 0, len(c))
	if len(c) == 0 {
		return report, nil
	}

	report = append(report, Verdict{BlockID: c[0].Index, OK: true})

	var broken bool
	for i := 1; i < len(c); i++ {
		if broken {
			report = append(report, Verdict{BlockID: c[i].Index, OK: false})
			continue
		}

		ok, err := checkBlock(d, algorithm, c[i], c[i-1])
		if err != nil {
			return nil, err
		}
		if !ok {
			broken = true
		}

		report = append(report, Verdict{BlockID: c[i].Index, OK: ok})
	}

	return report, nil
}

// checkBlock recomputes the block's content hash and compares it and the
// previous hash linkage. The checks run in order and short circuit.
func checkBlock(d digest.Digester, algorithm string, b block.Block, prev block.Block) (bool, error) {
	hash, err := d.Digest(algorithm, []byte(b.ContentString()))
	if err != nil {
		return false, err
	}
	if hash != b.Hash {
		return false, nil
	}

	return b.PrevBlockHash == prev.Hash, nil
}
