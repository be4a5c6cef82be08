// Package state is the core API for the blockchain simulator. It owns the
// in-memory chain for the life of the session and is the only code that
// replaces the chain value. There is no persistence; the chain lives and
// dies with the process.
package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/powlab/powchain/foundation/blockchain/block"
	"github.com/powlab/powchain/foundation/blockchain/chain"
	"github.com/powlab/powchain/foundation/blockchain/digest"
)

// EventHandler defines a function that is called when events occur in the
// processing of mining and validating blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for rebuilding the chain in the background.
type Worker interface {
	Shutdown()
	SignalRebuild(difficulty uint)
}

// =============================================================================

// Config represents the configuration required to start the simulator.
type Config struct {
	Algorithm  string
	Difficulty uint
	Digester   digest.Digester
	EvHandler  EventHandler
}

// State manages the simulator's chain and mining settings.
type State struct {
	mu         sync.RWMutex
	algorithm  string
	difficulty uint
	chain      chain.Chain

	digester  digest.Digester
	evHandler EventHandler

	Worker Worker
}

// New constructs the state and mines the genesis block for the session's
// chain under the configured algorithm and difficulty.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if !digest.Supported(cfg.Algorithm) {
		return nil, fmt.Errorf("algorithm %q is not supported", cfg.Algorithm)
	}

	genesis, err := chain.Genesis(context.Background(), cfg.Digester, cfg.Algorithm, cfg.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("mining genesis block: %w", err)
	}
	ev("state: genesis block mined: hash[%s] nonce[%d] duration[%.2fms]", genesis.Hash, genesis.Nonce, genesis.Duration)

	s := State{
		algorithm:  cfg.Algorithm,
		difficulty: cfg.Difficulty,
		chain:      chain.Chain{genesis},
		digester:   cfg.Digester,
		evHandler:  ev,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the simulator.

	return &s, nil
}

// Shutdown cleanly brings the simulator down.
func (s *State) Shutdown() error {
	if s.Worker != nil {
		s.Worker.Shutdown()
	}
	return nil
}

// =============================================================================

// ResetChain discards the current chain and mines a fresh genesis block
// under the specified algorithm and difficulty.
func (s *State) ResetChain(ctx context.Context, algorithm string, difficulty uint) (block.Block, error) {
	if !digest.Supported(algorithm) {
		return block.Block{}, fmt.Errorf("algorithm %q is not supported", algorithm)
	}

	genesis, err := chain.Genesis(ctx, s.digester, algorithm, difficulty)
	if err != nil {
		return block.Block{}, err
	}
	s.evHandler("state: ResetChain: genesis block mined: hash[%s] nonce[%d]", genesis.Hash, genesis.Nonce)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.algorithm = algorithm
	s.difficulty = difficulty
	s.chain = chain.Chain{genesis}

	return genesis, nil
}

// AddBlock mines a block carrying the transaction payload and appends it
// to the session chain. Mining block N+1 only starts once block N's hash
// is fixed, so blocks are added strictly sequentially.
func (s *State) AddBlock(ctx context.Context, transaction string) (block.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nc, err := chain.Add(ctx, s.digester, s.chain, transaction, s.algorithm, s.difficulty)
	if err != nil {
		return block.Block{}, err
	}

	mined := nc[len(nc)-1]
	s.evHandler("state: AddBlock: block mined: index[%d] hash[%s] nonce[%d] duration[%.2fms]", mined.Index, mined.Hash, mined.Nonce, mined.Duration)

	s.chain = nc

	return mined, nil
}

// ValidateChain reports a per-block verdict for the current chain using
// the session's algorithm.
func (s *State) ValidateChain() ([]chain.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return chain.Validate(s.digester, s.algorithm, s.chain)
}

// =============================================================================

// Rebuild re-mines every block of the current chain under the specified
// difficulty, preserving each block's transaction payload. The work is
// strictly sequential since each block's previous hash depends on the
// block before it. Cancellation is checked between blocks; once ctx is
// done no state is updated and the session chain is left as it was.
func (s *State) Rebuild(ctx context.Context, difficulty uint) error {
	s.mu.RLock()
	old := make(chain.Chain, len(s.chain))
	copy(old, s.chain)
	algorithm := s.algorithm
	s.mu.RUnlock()

	s.evHandler("state: Rebuild: started: difficulty[%d] blocks[%d]", difficulty, len(old))
	defer s.evHandler("state: Rebuild: completed")

	genesis, err := chain.Genesis(ctx, s.digester, algorithm, difficulty)
	if err != nil {
		return err
	}

	nc := chain.Chain{genesis}
	for _, b := range old[1:] {
		if err := ctx.Err(); err != nil {
			s.evHandler("state: Rebuild: CANCELLED: chain left unchanged")
			return err
		}

		nc, err = chain.Add(ctx, s.digester, nc, b.Transaction, algorithm, difficulty)
		if err != nil {
			return err
		}

		mined := nc[len(nc)-1]
		s.evHandler("state: Rebuild: block re-mined: index[%d] nonce[%d] duration[%.2fms]", mined.Index, mined.Nonce, mined.Duration)
	}

	// The swap is atomic: a cancelled rebuild never publishes a partial
	// chain.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = nc
	s.difficulty = difficulty

	return nil
}

// SignalRebuild asks the worker to rebuild the chain in the background
// under the specified difficulty, cancelling any rebuild in flight.
func (s *State) SignalRebuild(difficulty uint) {
	if s.Worker != nil {
		s.Worker.SignalRebuild(difficulty)
	}
}

// =============================================================================

// RetrieveChain returns a copy of the current chain.
func (s *State) RetrieveChain() chain.Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := make(chain.Chain, len(s.chain))
	copy(c, s.chain)
	return c
}

// RetrieveLatestBlock returns the last block of the current chain.
func (s *State) RetrieveLatestBlock() block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, _ := s.chain.Latest()
	return b
}

// RetrieveSettings returns the session's algorithm and difficulty.
func (s *State) RetrieveSettings() (algorithm string, difficulty uint) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.algorithm, s.difficulty
}
