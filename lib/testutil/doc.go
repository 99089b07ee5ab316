// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for castty packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. They are the only place
// in the test suite where real wall-clock timeouts are used; timing
// under test goes through lib/clock.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no castty-internal dependencies.
package testutil
