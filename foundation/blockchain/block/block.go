// Package block implements the block model, the factory that computes a
// block's content hash, and the proof of work miner.
package block

import (
	"context"
	"strconv"
	"strings"

	"github.com/powlab/powchain/foundation/blockchain/digest"
)

// GenesisPrevBlockHash is the sentinel previous hash carried by the first
// block in any chain.
const GenesisPrevBlockHash = "0"

// GenesisTransaction is the fixed payload of the first block.
const GenesisTransaction = "Genesis Block"

// =============================================================================

// Block represents a single entry in the chain. A block is a value and is
// never mutated once mined; the miner produces successor candidates instead.
type Block struct {
	Index         uint64  `json:"index"`
	TimeStamp     int64   `json:"timestamp"`
	Transaction   string  `json:"transaction"`
	PrevBlockHash string  `json:"previousHash"`
	Nonce         uint64  `json:"nonce"`
	Hash          string  `json:"hash"`
	Duration      float64 `json:"duration"`
}

// New constructs a block from its content fields and computes its hash with
// the specified algorithm. Duration is left at zero; timing a nonce search
// is the caller's concern. Digester failures propagate unchanged.
func New(d digest.Digester, algorithm string, index uint64, timeStamp int64, transaction string, prevBlockHash string, nonce uint64) (Block, error) {
	b := Block{
		Index:         index,
		TimeStamp:     timeStamp,
		Transaction:   transaction,
		PrevBlockHash: prevBlockHash,
		Nonce:         nonce,
	}

	hash, err := d.Digest(algorithm, []byte(b.ContentString()))
	if err != nil {
		return Block{}, err
	}
	b.Hash = hash

	return b, nil
}

// ContentString returns the canonical string the block's hash is computed
// over: index, timestamp, transaction, previous hash and nonce concatenated
// without separators. Numeric fields are formatted as plain base-10
// decimals with no exponent notation and no leading zeros, so the content
// string is stable across implementations.
func (b Block) ContentString() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(b.Index, 10))
	sb.WriteString(strconv.FormatInt(b.TimeStamp, 10))
	sb.WriteString(b.Transaction)
	sb.WriteString(b.PrevBlockHash)
	sb.WriteString(strconv.FormatUint(b.Nonce, 10))
	return sb.String()
}

// =============================================================================

// Mine performs the proof of work search: starting from the candidate's
// current nonce, hashes successive candidates until one satisfies the
// difficulty. The returned block carries the smallest satisfying nonce
// greater than or equal to the input's. Difficulty zero returns the
// candidate unchanged after a single predicate evaluation.
//
// The search is unbounded; expected work is 16^difficulty attempts. The
// loop honors ctx cancellation between attempts.
func Mine(ctx context.Context, d digest.Digester, algorithm string, difficulty uint, candidate Block) (Block, error) {
	for {

		// Check if the candidate solves the puzzle.
		if isHashSolved(difficulty, candidate.Hash) {
			return candidate, nil
		}

		// Did the caller give up on the search.
		if err := ctx.Err(); err != nil {
			return Block{}, err
		}

		// Build the next candidate with the only varying field bumped.
		nb, err := New(d, algorithm, candidate.Index, candidate.TimeStamp, candidate.Transaction, candidate.PrevBlockHash, candidate.Nonce+1)
		if err != nil {
			return Block{}, err
		}
		candidate = nb
	}
}

// isHashSolved checks the hash to make sure it complies with the POW
// rules. We need to match a difficulty number of leading 0's.
func isHashSolved(difficulty uint, hash string) bool {
	const match = "00000000000000000000000000000000"

	if difficulty > uint(len(match)) || uint(len(hash)) < difficulty {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}
