// Package buildid defines the canonical identity for a binary/symbol pair.
//
// A build id is the byte sequence a toolchain embeds in a binary's
// build-id note. Two files are treated as the same artifact iff their
// build ids are equal and non-empty. The zero value (Empty) means
// "unknown/unverified" and never matches anything as ground truth;
// callers that hold an Empty id accept candidate files by name alone.
package buildid

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// BuildID is an immutable binary identity.
//
// The zero value is Empty. BuildID is comparable and usable as a map key;
// equality of non-empty ids is byte equality of the underlying sequence.
type BuildID struct {
	// Lowercase hex of the raw bytes. Stored as a string so the type is
	// comparable and cannot be mutated through a shared slice.
	value string
}

// Empty is the "unknown/unverified" sentinel.
var Empty = BuildID{}

// FromBytes creates a BuildID from raw bytes. An empty or nil slice
// yields Empty.
func FromBytes(b []byte) BuildID {
	if len(b) == 0 {
		return Empty
	}
	return BuildID{value: hex.EncodeToString(b)}
}

// FromHex parses a hex string into a BuildID. The empty string yields
// Empty. Parsing is case-insensitive; the round trip through String
// produces lowercase hex.
func FromHex(s string) (BuildID, error) {
	if s == "" {
		return Empty, nil
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return Empty, fmt.Errorf("parse build id %q: %w", s, err)
	}
	return FromBytes(b), nil
}

// MustFromHex is FromHex for known-good literals. Panics on bad input.
func MustFromHex(s string) BuildID {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsEmpty reports whether the id is the Empty sentinel.
func (id BuildID) IsEmpty() bool {
	return id.value == ""
}

// String returns the lowercase hex encoding, or "" for Empty.
// String and FromHex are exact inverses, including for Empty.
func (id BuildID) String() string {
	return id.value
}

// Bytes returns a copy of the raw bytes, or nil for Empty.
func (id BuildID) Bytes() []byte {
	if id.value == "" {
		return nil
	}
	b, err := hex.DecodeString(id.value)
	if err != nil {
		// value is always produced by hex.EncodeToString
		panic(fmt.Sprintf("corrupt build id %q: %v", id.value, err))
	}
	return b
}

// Matches reports whether two ids identify the same artifact.
// Empty never matches, not even another Empty: an unknown identity is
// not evidence of sameness.
func (id BuildID) Matches(other BuildID) bool {
	return !id.IsEmpty() && id.value == other.value
}
