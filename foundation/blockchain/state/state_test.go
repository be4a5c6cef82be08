package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/powlab/powchain/foundation/blockchain/digest"
	"github.com/powlab/powchain/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T, testID int, difficulty uint) *state.State {
	st, err := state.New(state.Config{
		Algorithm:  digest.SHA256,
		Difficulty: difficulty,
		Digester:   digest.NewProvider(nil),
	})
	if err != nil {
		t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %s", failed, testID, err)
	}
	return st
}

func TestSession(t *testing.T) {
	t.Log("Given the need to validate the simulator session API.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen starting a session and mining two blocks.", testID)
		{
			st := newState(t, testID, 1)
			ctx := context.Background()

			c := st.RetrieveChain()
			if len(c) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould start with only the genesis block, got %d.", failed, testID, len(c))
			}
			t.Logf("\t%s\tTest %d:\tShould start with only the genesis block.", success, testID)

			if _, err := st.AddBlock(ctx, "tx1"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %s", failed, testID, err)
			}
			if _, err := st.AddBlock(ctx, "tx2"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add blocks.", success, testID)

			report, err := st.ValidateChain()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate: %s", failed, testID, err)
			}
			if len(report) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould get a verdict per block, got %d.", failed, testID, len(report))
			}
			for _, verdict := range report {
				if !verdict.OK {
					t.Fatalf("\t%s\tTest %d:\tShould report block %d ok.", failed, testID, verdict.BlockID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould report every block ok.", success, testID)

			latest := st.RetrieveLatestBlock()
			if latest.Index != 2 || latest.Transaction != "tx2" {
				t.Fatalf("\t%s\tTest %d:\tShould retrieve the latest block, got index %d.", failed, testID, latest.Index)
			}
			t.Logf("\t%s\tTest %d:\tShould retrieve the latest block.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen resetting the chain with new settings.", testID)
		{
			st := newState(t, testID, 0)
			ctx := context.Background()

			if _, err := st.AddBlock(ctx, "tx1"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %s", failed, testID, err)
			}

			genesis, err := st.ResetChain(ctx, digest.SHA512, 1)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reset the chain: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to reset the chain.", success, testID)

			if genesis.Index != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould mine a fresh genesis block.", failed, testID)
			}
			if len(st.RetrieveChain()) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould discard the previous chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould discard the previous chain.", success, testID)

			algorithm, difficulty := st.RetrieveSettings()
			if algorithm != digest.SHA512 || difficulty != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould apply the new settings, got %s/%d.", failed, testID, algorithm, difficulty)
			}
			t.Logf("\t%s\tTest %d:\tShould apply the new settings.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen constructing with an unknown algorithm.", testID)
		{
			if _, err := state.New(state.Config{Algorithm: "MD5", Digester: digest.NewProvider(nil)}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject an unknown algorithm.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an unknown algorithm.", success, testID)
		}
	}
}

func TestRebuild(t *testing.T) {
	t.Log("Given the need to re-mine the chain under a new difficulty.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen rebuilding a three block chain.", testID)
		{
			st := newState(t, testID, 0)
			ctx := context.Background()

			if _, err := st.AddBlock(ctx, "tx1"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %s", failed, testID, err)
			}
			if _, err := st.AddBlock(ctx, "tx2"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %s", failed, testID, err)
			}

			if err := st.Rebuild(ctx, 2); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to rebuild: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to rebuild.", success, testID)

			_, difficulty := st.RetrieveSettings()
			if difficulty != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould apply the new difficulty, got %d.", failed, testID, difficulty)
			}
			t.Logf("\t%s\tTest %d:\tShould apply the new difficulty.", success, testID)

			c := st.RetrieveChain()
			if len(c) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould keep every block, got %d.", failed, testID, len(c))
			}
			if c[1].Transaction != "tx1" || c[2].Transaction != "tx2" {
				t.Fatalf("\t%s\tTest %d:\tShould preserve the transaction payloads.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould preserve the transaction payloads.", success, testID)

			report, err := st.ValidateChain()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate: %s", failed, testID, err)
			}
			for _, verdict := range report {
				if !verdict.OK {
					t.Fatalf("\t%s\tTest %d:\tShould report block %d ok after rebuild.", failed, testID, verdict.BlockID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould report every block ok after rebuild.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen the rebuild is cancelled.", testID)
		{
			st := newState(t, testID, 0)
			ctx := context.Background()

			if _, err := st.AddBlock(ctx, "tx1"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %s", failed, testID, err)
			}
			before := st.RetrieveChain()

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			if err := st.Rebuild(cctx, 1); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould get context.Canceled, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get context.Canceled.", success, testID)

			after := st.RetrieveChain()
			if len(after) != len(before) || after[len(after)-1] != before[len(before)-1] {
				t.Fatalf("\t%s\tTest %d:\tShould leave the chain unchanged.", failed, testID)
			}
			_, difficulty := st.RetrieveSettings()
			if difficulty != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the difficulty unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the chain unchanged.", success, testID)
		}
	}
}
