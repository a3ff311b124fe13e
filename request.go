// Copyright 2024 Jigsaw Operations LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package happyeyeballs

import (
	"context"
	"time"
)

// DefaultResolutionDelay is the resolution delay [NewRequest] fills in,
// per RFC 8305 section 8's recommendation.
const DefaultResolutionDelay = 50 * time.Millisecond

// LookupFunc is the external name-lookup primitive the resolver depends on.
// It must respect ctx cancellation. An implementation may return a non-nil
// error or a non-empty slice, never both being "successful but empty" --
// callers that have nothing to report should return a non-nil error instead,
// since the resolver treats an empty, error-free result as a failure anyway.
type LookupFunc func(ctx context.Context, host, port string, family Family, sockType, proto, flags int) ([]AddrInfo, error)

// Request configures one call to [Resolve], [ResolveSimple], or [Collect].
// The zero value is not directly usable; construct one with [NewRequest].
type Request struct {
	// Host is a hostname or an IPv4/IPv6 literal.
	Host string
	// Port is passed through to the lookup primitive verbatim. The literal
	// fast-path and [SystemLookup] parse it as a decimal port number; a
	// literal host with an unparsable port does not take the fast path.
	Port string

	// Family restricts which address families are queried. FamilyUnspecified
	// (the default) queries both.
	Family Family
	// SockType, Proto, and Flags are opaque passthrough values forwarded to
	// Lookup and stamped onto synthesized literal AddrInfo values.
	SockType int
	Proto    int
	Flags    int

	// ResolutionDelay bounds how long the merger holds back IPv4 results
	// while waiting for a still-pending IPv6 lookup. Unlike most durations
	// in this package's style, zero is meaningful here (no hold at all)
	// rather than "use the default" -- see [NewRequest].
	ResolutionDelay time.Duration
	// FirstAddrFamilyCount is the number of primary-family addresses emitted
	// before round-robin interleaving begins. Zero is meaningful here too
	// (pure round-robin, secondary-first) -- see [NewRequest].
	FirstAddrFamilyCount int

	// Lookup is the name-lookup primitive. A nil Lookup defaults to
	// [SystemLookup].
	Lookup LookupFunc
}

// NewRequest returns a [Request] for host:port with ResolutionDelay and
// FirstAddrFamilyCount set to their documented defaults. Because zero is a
// meaningful, distinct value for both fields (an explicit "don't hold" and
// an explicit "no burst"), the defaults are filled in here rather than
// treated as a zero-value fallback at resolve time -- callers who want the
// zero behavior build a Request{} literal, or overwrite the field after
// calling NewRequest.
func NewRequest(host, port string) Request {
	return Request{
		Host:                 host,
		Port:                 port,
		ResolutionDelay:      DefaultResolutionDelay,
		FirstAddrFamilyCount: 1,
	}
}

func (r Request) lookupFunc() LookupFunc {
	if r.Lookup != nil {
		return r.Lookup
	}
	return SystemLookup
}
