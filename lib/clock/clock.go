// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock reads the current time. Production code calls Now on a Clock
// instead of time.Now.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
