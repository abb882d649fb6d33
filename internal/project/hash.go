package project

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Digest is a 128-bit content hash.
type Digest [16]byte

// HashContent hashes file content.
func HashContent(content []byte) Digest {
	return xxh3.Hash128(content).Bytes()
}

// Combine builds a snapshot hash: H(first || rest...). The order of parts
// must be deterministic; callers sort by path first.
func Combine(first Digest, rest ...Digest) Digest {
	h := xxh3.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	return h.Sum128().Bytes()
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}
