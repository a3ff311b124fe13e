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

import "net/netip"

// Family is an address family, matching the handful of socket.AF_* values
// the resolver cares about.
type Family int

const (
	// FamilyUnspecified means both INET and INET6 should be queried.
	FamilyUnspecified Family = iota
	// FamilyINET is IPv4.
	FamilyINET
	// FamilyINET6 is IPv6.
	FamilyINET6
)

// String implements [fmt.Stringer].
func (f Family) String() string {
	switch f {
	case FamilyINET:
		return "INET"
	case FamilyINET6:
		return "INET6"
	default:
		return "UNSPEC"
	}
}

// SockAddr is the family-shaped address tuple of an [AddrInfo]. FlowInfo and
// ScopeID are only meaningful for FamilyINET6 sockaddrs and are zero otherwise.
type SockAddr struct {
	IP       netip.Addr
	Port     uint16
	FlowInfo uint32
	ScopeID  uint32
}

// AddrInfo is one candidate endpoint, as returned by the lookup primitive or
// synthesized by the literal fast-path. It is an immutable 5-tuple; two
// AddrInfo values are equal iff all fields are equal.
type AddrInfo struct {
	Family    Family
	SockType  int
	Proto     int
	CanonName string
	Addr      SockAddr
}
