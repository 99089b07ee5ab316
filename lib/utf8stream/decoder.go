// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package utf8stream

import "fmt"

// Status is the outcome of feeding one byte to a Decoder.
type Status uint8

const (
	// Pending means the byte was accepted as part of a multi-byte
	// sequence that is not finished yet.
	Pending Status = iota

	// Complete means a code point was produced. Read it from the rune
	// returned by Step.
	Complete

	// Invalid means the byte cannot start a sequence (a stray
	// continuation byte, 0xC0, 0xC1, or 0xF5..0xFF). The byte is consumed.
	Invalid

	// Truncated means the byte cannot continue the pending sequence. The
	// pending bytes are dropped as one invalid unit and the decoder is
	// reset. The byte itself is not consumed: feed it to Step again.
	Truncated
)

// String returns the status name.
func (status Status) String() string {
	switch status {
	case Pending:
		return "pending"
	case Complete:
		return "complete"
	case Invalid:
		return "invalid"
	case Truncated:
		return "truncated"
	default:
		return fmt.Sprintf("unknown(%d)", status)
	}
}

// Decoder holds the state of a partially decoded sequence. The zero
// value is ready to use and expects the first byte of a sequence.
type Decoder struct {
	// codepoint accumulates payload bits of the pending sequence.
	codepoint rune

	// remaining is the number of continuation bytes still expected.
	remaining int

	// low and high bound the next continuation byte. They are
	// 0x80..0xBF except right after E0, ED, F0, and F4, where the
	// narrower range rules out overlongs, surrogates, and values above
	// U+10FFFF.
	low, high byte
}

// Step feeds one byte to the decoder. The rune is meaningful only when
// the status is Complete.
func (decoder *Decoder) Step(b byte) (rune, Status) {
	if decoder.remaining == 0 {
		return decoder.start(b)
	}

	if b < decoder.low || b > decoder.high {
		decoder.Reset()
		return 0, Truncated
	}

	decoder.codepoint = decoder.codepoint<<6 | rune(b&0x3F)
	decoder.remaining--
	decoder.low, decoder.high = 0x80, 0xBF
	if decoder.remaining > 0 {
		return 0, Pending
	}

	codepoint := decoder.codepoint
	decoder.codepoint = 0
	return codepoint, Complete
}

// start handles the first byte of a sequence.
func (decoder *Decoder) start(b byte) (rune, Status) {
	decoder.low, decoder.high = 0x80, 0xBF

	switch {
	case b < 0x80:
		return rune(b), Complete
	case b >= 0xC2 && b <= 0xDF:
		decoder.codepoint = rune(b & 0x1F)
		decoder.remaining = 1
	case b >= 0xE0 && b <= 0xEF:
		decoder.codepoint = rune(b & 0x0F)
		decoder.remaining = 2
		switch b {
		case 0xE0:
			decoder.low = 0xA0
		case 0xED:
			decoder.high = 0x9F
		}
	case b >= 0xF0 && b <= 0xF4:
		decoder.codepoint = rune(b & 0x07)
		decoder.remaining = 3
		switch b {
		case 0xF0:
			decoder.low = 0x90
		case 0xF4:
			decoder.high = 0x8F
		}
	default:
		return 0, Invalid
	}
	return 0, Pending
}

// Reset discards any pending sequence.
func (decoder *Decoder) Reset() {
	*decoder = Decoder{}
}
