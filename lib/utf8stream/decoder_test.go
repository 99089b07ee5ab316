// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package utf8stream

import (
	"testing"
	"unicode/utf8"
)

// decodeAll runs bytes through a decoder, re-feeding truncated bytes,
// and returns the code points produced with -1 marking each invalid unit.
func decodeAll(decoder *Decoder, input []byte) []rune {
	var output []rune
	for index := 0; index < len(input); {
		codepoint, status := decoder.Step(input[index])
		switch status {
		case Complete:
			output = append(output, codepoint)
		case Invalid:
			output = append(output, -1)
		case Truncated:
			output = append(output, -1)
			continue
		}
		index++
	}
	return output
}

func TestDecoderWellFormed(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"hello",
		"\x00\x1b[2J",
		"héllo wörld",
		"日本語",
		"\U0001F4A9 pile",
		"߿ࠀ￿\U00010000\U0010FFFF",
	} {
		var decoder Decoder
		got := decodeAll(&decoder, []byte(text))
		want := []rune(text)
		if string(got) != string(want) {
			t.Errorf("decode %q: got %q, want %q", text, string(got), string(want))
		}
		if decoder.remaining != 0 {
			t.Errorf("decode %q: decoder still in progress", text)
		}
	}
}

func TestDecoderRejectsMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  []rune
	}{
		{"lone continuation", []byte{0x80, 'a'}, []rune{-1, 'a'}},
		{"overlong two byte", []byte{0xC0, 0xAF}, []rune{-1, -1}},
		{"overlong three byte", []byte{0xE0, 0x80, 0xAF}, []rune{-1, -1, -1}},
		{"surrogate", []byte{0xED, 0xA0, 0x80}, []rune{-1, -1, -1}},
		{"above max", []byte{0xF4, 0x90, 0x80, 0x80}, []rune{-1, -1, -1, -1}},
		{"invalid lead", []byte{0xFF, 'b'}, []rune{-1, 'b'}},
		{"truncated by ascii", []byte{0xE2, 0x82, 'x'}, []rune{-1, 'x'}},
		{"truncated by new lead", []byte{0xC3, 0xC3, 0xA9}, []rune{-1, 'é'}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var decoder Decoder
			got := decodeAll(&decoder, test.input)
			if len(got) != len(test.want) {
				t.Fatalf("got %v, want %v", got, test.want)
			}
			for index := range got {
				if got[index] != test.want[index] {
					t.Errorf("unit %d: got %d, want %d", index, got[index], test.want[index])
				}
			}
		})
	}
}

func TestDecoderResumesAcrossCalls(t *testing.T) {
	t.Parallel()

	encoded := []byte("\U0001F4A9")
	var decoder Decoder
	for index, b := range encoded[:3] {
		if _, status := decoder.Step(b); status != Pending {
			t.Fatalf("byte %d: got %v, want pending", index, status)
		}
	}
	if decoder.remaining != 1 {
		t.Fatal("decoder should report a sequence in progress")
	}
	codepoint, status := decoder.Step(encoded[3])
	if status != Complete || codepoint != 0x1F4A9 {
		t.Errorf("final byte: got (%U, %v), want (U+1F4A9, complete)", codepoint, status)
	}
}

func TestDecoderAgreesWithStandardLibrary(t *testing.T) {
	t.Parallel()

	// Every two-byte input either decodes like unicode/utf8 or is
	// reported invalid where unicode/utf8 reports RuneError.
	for first := 0; first < 256; first++ {
		for second := 0x80; second < 0xC0; second++ {
			input := []byte{byte(first), byte(second)}
			want, size := utf8.DecodeRune(input)
			var decoder Decoder
			got := decodeAll(&decoder, input)
			if want != utf8.RuneError && size == 2 {
				if len(got) != 1 || got[0] != want {
					t.Errorf("% x: got %v, want [%U]", input, got, want)
				}
			}
		}
	}
}
