package digest_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/powlab/powchain/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestDigestWidths(t *testing.T) {
	type table struct {
		algorithm string
		width     int
	}

	tt := []table{
		{digest.SHA1, 40},
		{digest.SHA256, 64},
		{digest.SHA384, 96},
		{digest.SHA512, 128},
		{digest.Keccak256, 64},
	}

	t.Log("Given the need to validate digest widths per algorithm.")
	{
		p := digest.NewProvider(nil)

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen hashing with %s.", testID, tst.algorithm)
			{
				hash, err := p.Digest(tst.algorithm, []byte("abc"))
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to hash data: %s", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to hash data.", success, testID)

				if len(hash) != tst.width {
					t.Fatalf("\t%s\tTest %d:\tShould get a %d character digest, got %d.", failed, testID, tst.width, len(hash))
				}
				t.Logf("\t%s\tTest %d:\tShould get a %d character digest.", success, testID, tst.width)

				if hash != strings.ToLower(hash) {
					t.Fatalf("\t%s\tTest %d:\tShould get a lowercase digest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get a lowercase digest.", success, testID)
			}
		}
	}
}

func TestKnownVectors(t *testing.T) {
	t.Log("Given the need to validate digests against known vectors.")
	{
		p := digest.NewProvider(nil)

		testID := 0
		t.Logf("\tTest %d:\tWhen hashing \"abc\" with SHA-256.", testID)
		{
			hash, err := p.Digest(digest.SHA256, []byte("abc"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to hash data: %s", failed, testID, err)
			}
			exp := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
			if hash != exp {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, hash)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould get the known digest.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the known digest.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen hashing \"abc\" with SHA-1.", testID)
		{
			hash, err := p.Digest(digest.SHA1, []byte("abc"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to hash data: %s", failed, testID, err)
			}
			exp := "a9993e364706816aba3e25717850c26c9cd0d89d"
			if hash != exp {
				t.Fatalf("\t%s\tTest %d:\tShould get the known digest, got %s.", failed, testID, hash)
			}
			t.Logf("\t%s\tTest %d:\tShould get the known digest.", success, testID)
		}
	}
}

func TestInvalidInput(t *testing.T) {
	type table struct {
		name      string
		algorithm string
		data      []byte
	}

	tt := []table{
		{"missing algorithm", "", []byte("abc")},
		{"missing data", digest.SHA256, nil},
		{"empty data", digest.SHA256, []byte{}},
		{"unknown algorithm", "MD5", []byte("abc")},
	}

	t.Log("Given the need to reject invalid digest inputs.")
	{
		p := digest.NewProvider(nil)

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
			{
				if _, err := p.Digest(tst.algorithm, tst.data); !errors.Is(err, digest.ErrInvalidInput) {
					t.Fatalf("\t%s\tTest %d:\tShould get ErrInvalidInput, got %v.", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get ErrInvalidInput.", success, testID)
			}
		}
	}
}

func TestSHA1Advisory(t *testing.T) {
	t.Log("Given the need to emit an advisory when SHA-1 is selected.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen hashing with SHA-1.", testID)
		{
			var evs []string
			ev := func(v string, args ...any) {
				evs = append(evs, fmt.Sprintf(v, args...))
			}
			p := digest.NewProvider(ev)

			if _, err := p.Digest(digest.SHA1, []byte("abc")); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould not block the call: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not block the call.", success, testID)

			var advised bool
			for _, e := range evs {
				if strings.Contains(e, "SHA-1") {
					advised = true
				}
			}
			if !advised {
				t.Fatalf("\t%s\tTest %d:\tShould emit an advisory event.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould emit an advisory event.", success, testID)

			evs = nil
			if _, err := p.Digest(digest.SHA256, []byte("abc")); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to hash with SHA-256: %s", failed, testID, err)
			}
			if len(evs) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not advise for SHA-256.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not advise for SHA-256.", success, testID)
		}
	}
}
