// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package utf8stream decodes UTF-8 one byte at a time.
//
// Terminal output arrives in arbitrary read-sized chunks, so a multi-byte
// character is routinely split across two reads. [Decoder] carries the
// partial sequence between calls to [Decoder.Step]; the caller owns the
// Decoder value and passes it along with each byte, which makes the
// cross-batch state explicit.
//
// The decoder accepts exactly the well-formed sequences of RFC 3629:
// overlong encodings, UTF-16 surrogate code points, and values above
// U+10FFFF are rejected at the first byte that makes them impossible.
//
// Error policy: a byte that can neither start nor continue a sequence is
// reported as [Invalid] and consumed. A byte that interrupts a pending
// sequence is reported as [Truncated]; the pending bytes are discarded as
// one invalid unit and the interrupting byte is NOT consumed, so the
// caller must feed it again. This keeps the decoder synchronized with the
// next valid character instead of swallowing it.
package utf8stream
