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
	"net"
	"net/netip"
	"strconv"
)

// literal checks whether req.Host is a numeric IPv4/IPv6 address consistent
// with req.Family, returning the single synthesized AddrInfo if so. This
// mirrors the teacher's own fast path:
//
//	if net.ParseIP(host) != nil {
//		// Host is already an IP address, just dial the address.
//		return d.dial(ctx, addr)
//	}
//
// generalized to produce an AddrInfo instead of dialing directly, and to
// respect a family restriction that disagrees with the literal (in which
// case the fast path must not fire, per spec.md section 4.1).
func literal(req Request) (AddrInfo, bool) {
	addr, err := netip.ParseAddr(req.Host)
	if err != nil {
		return AddrInfo{}, false
	}

	family := FamilyINET6
	if addr.Is4() {
		family = FamilyINET
	}
	if req.Family != FamilyUnspecified && req.Family != family {
		return AddrInfo{}, false
	}

	portNum, err := strconv.ParseUint(req.Port, 10, 16)
	if err != nil {
		return AddrInfo{}, false
	}

	return AddrInfo{
		Family:   family,
		SockType: req.SockType,
		Proto:    req.Proto,
		Addr:     SockAddr{IP: addr, Port: uint16(portNum)},
	}, true
}

// addrFromNetIP converts a [net.IP] returned by [net.Resolver] into a
// [netip.Addr], preferring the 4-byte form for IPv4-mapped addresses so
// callers can distinguish families with Is4()/Is6().
func addrFromNetIP(ip net.IP) (netip.Addr, bool) {
	if ip4 := ip.To4(); ip4 != nil {
		return netip.AddrFrom4([4]byte(ip4)), true
	}
	if ip16 := ip.To16(); ip16 != nil {
		return netip.AddrFrom16([16]byte(ip16)), true
	}
	return netip.Addr{}, false
}
