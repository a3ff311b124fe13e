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

// splitBurst divides primary into the first-family burst and the remainder,
// per spec.md section 4.3.2 step 1. count is clamped to len(primary).
func splitBurst(primary []AddrInfo, count int) (burst, rest []AddrInfo) {
	if count > len(primary) {
		count = len(primary)
	}
	if count < 0 {
		count = 0
	}
	return primary[:count], primary[count:]
}

// roundRobin alternates secondary and primaryRest starting with secondary,
// appending the tail of whichever is longer once the other is exhausted.
// This is spec.md section 4.3.2 steps 2 and 3, isolated as a pure function so
// it can be exercised directly by the timing state machine in resolver.go
// regardless of which side became available first.
func roundRobin(secondary, primaryRest []AddrInfo) []AddrInfo {
	out := make([]AddrInfo, 0, len(secondary)+len(primaryRest))
	for i := 0; i < len(secondary) || i < len(primaryRest); i++ {
		if i < len(secondary) {
			out = append(out, secondary[i])
		}
		if i < len(primaryRest) {
			out = append(out, primaryRest[i])
		}
	}
	return out
}

// combine applies the full ordering rule of spec.md section 4.3.2 to a pair
// of fully-known per-family result lists: the first min(count, len(primary))
// elements of primary, then round-robin(secondary, rest-of-primary).
func combine(primary, secondary []AddrInfo, firstAddrFamilyCount int) []AddrInfo {
	burst, rest := splitBurst(primary, firstAddrFamilyCount)
	out := make([]AddrInfo, 0, len(primary)+len(secondary))
	out = append(out, burst...)
	out = append(out, roundRobin(secondary, rest)...)
	return out
}
