package block_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/powlab/powchain/foundation/blockchain/block"
	"github.com/powlab/powchain/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestFactory(t *testing.T) {
	t.Log("Given the need to validate block construction.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen creating a block from its content fields.", testID)
		{
			p := digest.NewProvider(nil)

			b, err := block.New(p, digest.SHA256, 7, 1700000000000, "tx", "0", 9)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create a block: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to create a block.", success, testID)

			exp := "71700000000000tx09"
			if b.ContentString() != exp {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, b.ContentString())
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould concatenate fields as plain decimals.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould concatenate fields as plain decimals.", success, testID)

			hash, err := p.Digest(digest.SHA256, []byte(exp))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to hash content: %s", failed, testID, err)
			}
			if b.Hash != hash {
				t.Fatalf("\t%s\tTest %d:\tShould store the digest of the content string.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould store the digest of the content string.", success, testID)

			if b.Duration != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave duration at zero.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave duration at zero.", success, testID)
		}
	}
}

func TestFactoryPropagatesDigestError(t *testing.T) {
	t.Log("Given the need to surface digester failures unchanged.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the algorithm is unknown.", testID)
		{
			p := digest.NewProvider(nil)

			if _, err := block.New(p, "NOPE", 0, 1, "", "0", 0); !errors.Is(err, digest.ErrInvalidInput) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrInvalidInput, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrInvalidInput.", success, testID)
		}
	}
}

func TestMine(t *testing.T) {
	t.Log("Given the need to validate the proof of work search.")
	{
		p := digest.NewProvider(nil)

		testID := 0
		t.Logf("\tTest %d:\tWhen mining with difficulty zero.", testID)
		{
			b, err := block.New(p, digest.SHA256, 0, 1700000000000, block.GenesisTransaction, block.GenesisPrevBlockHash, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create a block: %s", failed, testID, err)
			}

			mined, err := block.Mine(context.Background(), p, digest.SHA256, 0, b)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %s", failed, testID, err)
			}
			if mined != b {
				t.Fatalf("\t%s\tTest %d:\tShould return the candidate unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould return the candidate unchanged.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen mining with difficulty one.", testID)
		{
			const difficulty = 1

			b, err := block.New(p, digest.SHA256, 1, 1700000000000, "tx1", "0", 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create a block: %s", failed, testID, err)
			}

			mined, err := block.Mine(context.Background(), p, digest.SHA256, difficulty, b)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine.", success, testID)

			if !strings.HasPrefix(mined.Hash, strings.Repeat("0", difficulty)) {
				t.Fatalf("\t%s\tTest %d:\tShould satisfy the difficulty predicate: %s", failed, testID, mined.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould satisfy the difficulty predicate.", success, testID)

			// Every nonce below the winner must fail the predicate.
			for nonce := b.Nonce; nonce < mined.Nonce; nonce++ {
				cand, err := block.New(p, digest.SHA256, b.Index, b.TimeStamp, b.Transaction, b.PrevBlockHash, nonce)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to rebuild candidate: %s", failed, testID, err)
				}
				if strings.HasPrefix(cand.Hash, strings.Repeat("0", difficulty)) {
					t.Fatalf("\t%s\tTest %d:\tShould return the smallest satisfying nonce, %d also satisfies.", failed, testID, nonce)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould return the smallest satisfying nonce.", success, testID)

			if mined.Index != b.Index || mined.TimeStamp != b.TimeStamp || mined.Transaction != b.Transaction || mined.PrevBlockHash != b.PrevBlockHash {
				t.Fatalf("\t%s\tTest %d:\tShould only vary the nonce.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould only vary the nonce.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen the search is cancelled.", testID)
		{
			b, err := block.New(p, digest.SHA256, 2, 1700000000000, "tx2", "0", 0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create a block: %s", failed, testID, err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := block.Mine(ctx, p, digest.SHA256, 16, b); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould get context.Canceled, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get context.Canceled.", success, testID)
		}
	}
}
