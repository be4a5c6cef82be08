// Package digest provides the hashing capability the blockchain engine
// depends on. The engine never hashes directly; it is handed a Digester
// so tests can substitute a deterministic implementation.
package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Set of supported algorithm names.
const (
	SHA1      = "SHA-1"
	SHA256    = "SHA-256"
	SHA384    = "SHA-384"
	SHA512    = "SHA-512"
	Keccak256 = "Keccak-256"
)

// ErrInvalidInput is returned when the algorithm or the data to hash is
// missing or the algorithm name is not registered.
var ErrInvalidInput = errors.New("invalid input")

// EventHandler defines a function that is called when events occur
// during hashing, such as the SHA-1 deprecation advisory.
type EventHandler func(v string, args ...any)

// Digester declares the digest capability. Implementations must return
// the digest as a lowercase hexadecimal string with no separators.
type Digester interface {
	Digest(algorithm string, data []byte) (string, error)
}

// =============================================================================

// Provider implements the Digester interface over the registered set
// of hash algorithms.
type Provider struct {
	evHandler EventHandler
}

// NewProvider constructs a provider. The event handler may be nil.
func NewProvider(evHandler EventHandler) *Provider {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Provider{
		evHandler: ev,
	}
}

// Digest hashes the data with the named algorithm and returns the digest
// as a lowercase hex string. SHA-1 is accepted but an advisory event is
// emitted since it is deprecated for security sensitive use.
func (p *Provider) Digest(algorithm string, data []byte) (string, error) {
	if algorithm == "" {
		return "", fmt.Errorf("%w: missing algorithm", ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: missing data", ErrInvalidInput)
	}

	switch algorithm {
	case SHA1:
		p.evHandler("digest: advisory: SHA-1 is deprecated for security sensitive use, prefer SHA-256 or wider")
		hash := sha1.Sum(data)
		return hex.EncodeToString(hash[:]), nil

	case SHA256:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:]), nil

	case SHA384:
		hash := sha512.Sum384(data)
		return hex.EncodeToString(hash[:]), nil

	case SHA512:
		hash := sha512.Sum512(data)
		return hex.EncodeToString(hash[:]), nil

	case Keccak256:
		return hex.EncodeToString(crypto.Keccak256(data)), nil
	}

	return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, algorithm)
}

// =============================================================================

// Algorithms returns the set of registered algorithm names.
func Algorithms() []string {
	return []string{SHA1, SHA256, SHA384, SHA512, Keccak256}
}

// Supported reports whether the specified algorithm name is registered.
func Supported(algorithm string) bool {
	switch algorithm {
	case SHA1, SHA256, SHA384, SHA512, Keccak256:
		return true
	}
	return false
}
