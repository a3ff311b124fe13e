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
	"fmt"
	"net"
	"strconv"
)

// SystemLookup is the default [LookupFunc]. It resolves host via
// [net.DefaultResolver], restricting the query to "ip4" or "ip6" as directed
// by family, and stamps SockType/Proto onto every returned [AddrInfo].
//
// This mirrors the lookupIPv4/lookupIPv6 pair the teacher's
// HappyEyeballsStreamDialer uses, generalized to the resolver's family enum
// and the stream's richer AddrInfo rather than a bare []net.IP.
func SystemLookup(ctx context.Context, host, port string, family Family, sockType, proto, flags int) ([]AddrInfo, error) {
	network := "ip"
	switch family {
	case FamilyINET:
		network = "ip4"
	case FamilyINET6:
		network = "ip6"
	}

	netIPs, err := net.DefaultResolver.LookupIP(ctx, network, host)
	if err != nil {
		return nil, fmt.Errorf("system lookup for %s (%s) failed: %w", host, family, err)
	}

	portNum, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", port, err)
	}

	infos := make([]AddrInfo, 0, len(netIPs))
	for _, netIP := range netIPs {
		addr, ok := addrFromNetIP(netIP)
		if !ok {
			continue
		}
		resultFamily := FamilyINET6
		if addr.Is4() {
			resultFamily = FamilyINET
		}
		if family != FamilyUnspecified && resultFamily != family {
			continue
		}
		infos = append(infos, AddrInfo{
			Family:   resultFamily,
			SockType: sockType,
			Proto:    proto,
			Addr:     SockAddr{IP: addr, Port: uint16(portNum)},
		})
	}
	return infos, nil
}
