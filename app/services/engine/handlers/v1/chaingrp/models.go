package chaingrp

import "github.com/powlab/powchain/business/sys/validate"

// newChain is what is required to start a fresh chain with a new
// genesis block.
type newChain struct {
	Algorithm  string `json:"algorithm" validate:"required"`
	Difficulty uint   `json:"difficulty" validate:"max=6"`
}

// Validate checks the data in the model is considered clean.
func (nc newChain) Validate() error {
	return validate.Check(nc)
}

// newBlock is what is required to mine a block onto the chain. The
// transaction payload is opaque and may be empty.
type newBlock struct {
	Transaction string `json:"transaction"`
}

// newDifficulty is what is required to re-mine the chain under a new
// difficulty. Values above 6 are rejected at the API edge since the
// expected work of 16^difficulty attempts gets unreasonable fast.
type newDifficulty struct {
	Difficulty uint `json:"difficulty" validate:"max=6"`
}

// Validate checks the data in the model is considered clean.
func (nd newDifficulty) Validate() error {
	return validate.Check(nd)
}

// settings describes the session's current mining configuration.
type settings struct {
	Algorithm  string `json:"algorithm"`
	Difficulty uint   `json:"difficulty"`
}
