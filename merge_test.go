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
	"testing"

	"github.com/stretchr/testify/require"
)

// addrs builds a slice of distinguishable AddrInfo values from a string of
// labels, using CanonName as the label so test failures are readable.
func addrs(labels ...string) []AddrInfo {
	out := make([]AddrInfo, len(labels))
	for i, l := range labels {
		out[i] = AddrInfo{CanonName: l}
	}
	return out
}

func labels(got []AddrInfo) []string {
	out := make([]string, len(got))
	for i, a := range got {
		out[i] = a.CanonName
	}
	return out
}

func TestSplitBurst(t *testing.T) {
	primary := addrs("a", "b", "c", "d")

	burst, rest := splitBurst(primary, 2)
	require.Equal(t, []string{"a", "b"}, labels(burst))
	require.Equal(t, []string{"c", "d"}, labels(rest))

	burst, rest = splitBurst(primary, 0)
	require.Empty(t, burst)
	require.Equal(t, []string{"a", "b", "c", "d"}, labels(rest))

	burst, rest = splitBurst(primary, 99)
	require.Equal(t, []string{"a", "b", "c", "d"}, labels(burst))
	require.Empty(t, rest)

	burst, rest = splitBurst(primary, -1)
	require.Empty(t, burst)
	require.Equal(t, []string{"a", "b", "c", "d"}, labels(rest))
}

func TestRoundRobin(t *testing.T) {
	require.Equal(t,
		[]string{"w", "c", "x", "d"},
		labels(roundRobin(addrs("w", "x"), addrs("c", "d"))),
	)

	// secondary longer than primaryRest: tail of secondary appended as-is.
	require.Equal(t,
		[]string{"w", "c", "x", "y", "z"},
		labels(roundRobin(addrs("w", "x", "y", "z"), addrs("c"))),
	)

	// primaryRest longer than secondary.
	require.Equal(t,
		[]string{"w", "c", "d", "e"},
		labels(roundRobin(addrs("w"), addrs("c", "d", "e"))),
	)

	require.Empty(t, roundRobin(nil, nil))
}

func TestCombine(t *testing.T) {
	// spec.md worked example, firstAddrFamilyCount = 2:
	// primary [a,b,c,d], secondary [w,x,y,z] -> [a,b,w,c,x,d,y,z]
	primary := addrs("a", "b", "c", "d")
	secondary := addrs("w", "x", "y", "z")
	require.Equal(t,
		[]string{"a", "b", "w", "c", "x", "d", "y", "z"},
		labels(combine(primary, secondary, 2)),
	)

	// same inputs, firstAddrFamilyCount = 1:
	// [a,w,b,x,c,y,d,z]
	require.Equal(t,
		[]string{"a", "w", "b", "x", "c", "y", "d", "z"},
		labels(combine(primary, secondary, 1)),
	)

	// one side empty degenerates to the other side's native order.
	require.Equal(t, []string{"a", "b", "c", "d"}, labels(combine(primary, nil, 1)))
	require.Equal(t, []string{"w", "x", "y", "z"}, labels(combine(nil, secondary, 1)))
}
