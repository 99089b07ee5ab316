// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package asciicast

import (
	"github.com/castty/castty/lib/utf8stream"
)

// Placeholder is the escape written for each invalid UTF-8 unit: the
// UTF-16 surrogate pair of U+1F4A9.
const Placeholder = `\ud83d\udca9`

const hexDigits = "0123456789abcdef"

// Encoder converts raw terminal bytes into text that can sit between
// the quotes of a JSON string literal. The decoder state survives
// between calls, so a character split across two batches is escaped
// once, in the batch that completes it.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	decoder utf8stream.Decoder
}

// Append escapes raw and appends the result to destination.
func (encoder *Encoder) Append(destination, raw []byte) []byte {
	for index := 0; index < len(raw); {
		codepoint, status := encoder.decoder.Step(raw[index])
		switch status {
		case utf8stream.Complete:
			destination = appendCodepoint(destination, codepoint)
		case utf8stream.Invalid:
			destination = append(destination, Placeholder...)
		case utf8stream.Truncated:
			// The pending sequence is dropped and raw[index] starts a
			// new one on the next iteration.
			destination = append(destination, Placeholder...)
			continue
		}
		index++
	}
	return destination
}

// EscapeString escapes a complete string with a fresh decoder. A
// sequence left unfinished at the end of s is dropped.
func EscapeString(s string) string {
	var encoder Encoder
	return string(encoder.Append(make([]byte, 0, len(s)), []byte(s)))
}

func appendCodepoint(destination []byte, codepoint rune) []byte {
	switch {
	case codepoint == '"' || codepoint == '\\':
		return append(destination, '\\', byte(codepoint))
	case codepoint >= 0x20 && codepoint < 0x7F:
		return append(destination, byte(codepoint))
	case codepoint > 0xFFFF:
		offset := codepoint - 0x10000
		destination = appendUnicodeEscape(destination, (offset>>10)+0xD800)
		return appendUnicodeEscape(destination, (offset&0x3FF)+0xDC00)
	default:
		return appendUnicodeEscape(destination, codepoint)
	}
}

func appendUnicodeEscape(destination []byte, unit rune) []byte {
	return append(destination, '\\', 'u',
		hexDigits[unit>>12&0xF],
		hexDigits[unit>>8&0xF],
		hexDigits[unit>>4&0xF],
		hexDigits[unit&0xF],
	)
}
