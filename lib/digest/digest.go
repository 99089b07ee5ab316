// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes content digests of finished session files
// and maintains the sidecar files that carry them.
//
// A digest is a BLAKE3 keyed hash under a fixed castty domain key, so
// a session digest never collides with a plain BLAKE3 sum of the same
// bytes computed for another purpose. The sidecar is written next to
// the session as "<file>.b3" in the familiar "<hex>  <name>" layout.
package digest

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// SidecarSuffix is appended to a session path to name its digest file.
const SidecarSuffix = ".b3"

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// ErrMismatch is returned by Verify when the file does not match its
// recorded digest.
var ErrMismatch = errors.New("digest mismatch")

// domainKey is the BLAKE3 key for session digests: the ASCII domain
// name, zero-padded to 32 bytes. Changing it invalidates every
// existing sidecar.
var domainKey = [32]byte{
	'c', 'a', 's', 't', 't', 'y', '.', 's', 'e', 's', 's', 'i', 'o', 'n', '.', 'd',
	'i', 'g', 'e', 's', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func newHasher() *blake3.Hasher {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// Sum hashes data.
func Sum(data []byte) Hash {
	hasher := newHasher()
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// Reader hashes everything read from reader.
func Reader(reader io.Reader) (Hash, error) {
	hasher := newHasher()
	if _, err := io.Copy(hasher, reader); err != nil {
		return Hash{}, err
	}
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash, nil
}

// File hashes the file at path.
func File(path string) (Hash, error) {
	file, err := os.Open(path)
	if err != nil {
		return Hash{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	hash, err := Reader(file)
	if err != nil {
		return Hash{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hash, nil
}

// String returns the lowercase hex encoding.
func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}

// Parse parses a 64-character hex string into a Hash.
func Parse(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// WriteSidecar hashes the file at path and writes path+SidecarSuffix.
// It returns the digest and the sidecar path.
func WriteSidecar(path string) (Hash, string, error) {
	hash, err := File(path)
	if err != nil {
		return Hash{}, "", err
	}
	sidecar := path + SidecarSuffix
	line := hash.String() + "  " + filepath.Base(path) + "\n"
	if err := os.WriteFile(sidecar, []byte(line), 0o644); err != nil {
		return Hash{}, "", fmt.Errorf("writing digest sidecar: %w", err)
	}
	return hash, sidecar, nil
}

// ReadSidecar returns the digest recorded in path+SidecarSuffix.
func ReadSidecar(path string) (Hash, error) {
	file, err := os.Open(path + SidecarSuffix)
	if err != nil {
		return Hash{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Hash{}, fmt.Errorf("reading digest sidecar: %w", err)
		}
		return Hash{}, errors.New("digest sidecar is empty")
	}
	field, _, _ := strings.Cut(scanner.Text(), " ")
	return Parse(field)
}

// Verify checks the file at path against its sidecar.
func Verify(path string) (Hash, error) {
	recorded, err := ReadSidecar(path)
	if err != nil {
		return Hash{}, err
	}
	actual, err := File(path)
	if err != nil {
		return Hash{}, err
	}
	if actual != recorded {
		return actual, fmt.Errorf("%w: %s recorded %s, file hashes to %s", ErrMismatch, path, recorded, actual)
	}
	return actual, nil
}
