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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testResolutionDelay = 30 * time.Millisecond

// fakeResult describes how a stubbed LookupFunc should answer for one family.
type fakeResult struct {
	delay time.Duration
	addrs []AddrInfo
	err   error
}

// fakeLookup returns a LookupFunc that answers per-family according to
// byFamily, counting how many times it was invoked in calls.
func fakeLookup(t *testing.T, byFamily map[Family]fakeResult, calls *int32) LookupFunc {
	return func(ctx context.Context, host, port string, family Family, sockType, proto, flags int) ([]AddrInfo, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		r, ok := byFamily[family]
		if !ok {
			t.Fatalf("unexpected lookup for family %s", family)
		}
		if r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return r.addrs, r.err
	}
}

func drain(t *testing.T, s *Stream) ([]AddrInfo, error) {
	t.Helper()
	defer s.Close()
	var out []AddrInfo
	for {
		addr, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, addr)
	}
}

func TestResolveLiteralSkipsLookup(t *testing.T) {
	var calls int32
	req := NewRequest("127.0.0.1", "443")
	req.Lookup = fakeLookup(t, nil, &calls)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, FamilyINET, got[0].Family)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestResolveSingleFamilySuccess(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.Family = FamilyINET
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET: {addrs: addrs("v4-1", "v4-2")},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"v4-1", "v4-2"}, labels(got))
}

func TestResolveSingleFamilyFailureWrapsLengthOne(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.Family = FamilyINET6
	boom := errors.New("boom")
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {err: boom},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.Nil(t, got)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	require.Len(t, connErr.Errors, 1)
	require.Equal(t, FamilyINET6, connErr.Errors[0].Family)
	require.ErrorIs(t, err, boom)
}

// TestResolveDualFamilyOrdinaryRace covers the common case: both lookups
// settle well inside the resolution delay, so the result is exactly
// combine(v6, v4, firstAddrFamilyCount) with no timer involved.
func TestResolveDualFamilyOrdinaryRace(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.ResolutionDelay = testResolutionDelay
	req.FirstAddrFamilyCount = 1
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 2 * time.Millisecond, addrs: addrs("a", "b")},
		FamilyINET:  {delay: 5 * time.Millisecond, addrs: addrs("w", "x")},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "w", "b", "x"}, labels(got))
}

// TestResolveIPv6FailsIPv4Succeeds covers the secondary-first,
// primary-eventually-fails branch of emitBoth.
func TestResolveIPv6FailsIPv4Succeeds(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.ResolutionDelay = testResolutionDelay
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 5 * time.Millisecond, err: errors.New("no AAAA")},
		FamilyINET:  {delay: 2 * time.Millisecond, addrs: addrs("w", "x")},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"w", "x"}, labels(got))
}

// TestResolveIPv4FailsIPv6Succeeds covers the primary-first,
// secondary-eventually-fails branch of emitPrimaryFirst.
func TestResolveIPv4FailsIPv6Succeeds(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 2 * time.Millisecond, addrs: addrs("a", "b")},
		FamilyINET:  {delay: 5 * time.Millisecond, err: errors.New("no A")},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, labels(got))
}

func TestResolveBothFamiliesFailWrapsLengthTwoOrderedV6First(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.ResolutionDelay = testResolutionDelay
	v6err := errors.New("no AAAA")
	v4err := errors.New("no A")
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 5 * time.Millisecond, err: v6err},
		FamilyINET:  {delay: 2 * time.Millisecond, err: v4err},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.Nil(t, got)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	require.Len(t, connErr.Errors, 2)
	require.Equal(t, FamilyINET6, connErr.Errors[0].Family)
	require.Equal(t, FamilyINET, connErr.Errors[1].Family)
	require.ErrorIs(t, err, v6err)
	require.ErrorIs(t, err, v4err)
}

// TestResolveZeroResolutionDelayDoesNotHold covers spec.md section 8's
// boundary behaviour: an explicit ResolutionDelay of zero is a real "don't
// hold at all" setting, not a sentinel for the 50ms default -- IPv4 must be
// emitted immediately and IPv6 appended once it arrives.
func TestResolveZeroResolutionDelayDoesNotHold(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.ResolutionDelay = 0
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 20 * time.Millisecond, addrs: addrs("a")},
		FamilyINET:  {addrs: addrs("w", "x")},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"w", "x", "a"}, labels(got))
}

// TestResolveResolutionDelayFiresIPv4First covers the hold-back branch:
// IPv4 settles immediately but the resolver waits out the resolution delay
// for IPv6 before giving up and emitting IPv4 on its own.
func TestResolveResolutionDelayFiresIPv4First(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.ResolutionDelay = testResolutionDelay
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 10 * testResolutionDelay, addrs: addrs("a")},
		FamilyINET:  {delay: time.Millisecond, addrs: addrs("w", "x")},
	}, nil)

	s := Resolve(context.Background(), req)
	defer s.Close()

	addr, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "w", addr.CanonName)

	addr, ok, err = s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", addr.CanonName)
}

// TestResolveResolutionDelayLateIPv6IsAppendedAsTail covers spec.md's
// resolved Open Question: once the timer has fired and IPv4 has been
// committed to, a late-arriving IPv6 success is appended as a plain tail,
// never spliced back in ahead of IPv4 addresses already emitted.
func TestResolveResolutionDelayLateIPv6IsAppendedAsTail(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.ResolutionDelay = testResolutionDelay
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: 3 * testResolutionDelay, addrs: addrs("a", "b")},
		FamilyINET:  {delay: time.Millisecond, addrs: addrs("w", "x")},
	}, nil)

	got, err := drain(t, Resolve(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"w", "x", "a", "b"}, labels(got))
}

func TestResolveContextCancellationStopsStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	req := NewRequest("example.com", "443")
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET6: {delay: time.Hour, addrs: addrs("a")},
		FamilyINET:  {delay: time.Hour, addrs: addrs("w")},
	}, nil)

	s := Resolve(ctx, req)
	cancel()

	addr, ok, err := s.Next()
	require.False(t, ok)
	require.Zero(t, addr)
	require.NoError(t, err)
	s.Close()
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	req := NewRequest("127.0.0.1", "443")
	s := Resolve(context.Background(), req)
	s.Close()
	s.Close()
}

func TestResolveSimpleCombinesUnspecResult(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.FirstAddrFamilyCount = 1
	combined := append(append([]AddrInfo{}, addrs("a", "b")...), addrs("w", "x")...)
	for i := range combined[:2] {
		combined[i].Family = FamilyINET6
	}
	for i := 2; i < len(combined); i++ {
		combined[i].Family = FamilyINET
	}
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyUnspecified: {addrs: combined},
	}, nil)

	got, err := drain(t, ResolveSimple(context.Background(), req))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "w", "b", "x"}, labels(got))
}

func TestCollectSuccess(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.Family = FamilyINET
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET: {addrs: addrs("w", "x")},
	}, nil)

	got, err := Collect(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"w", "x"}, labels(got))
}

func TestCollectFailure(t *testing.T) {
	req := NewRequest("example.com", "443")
	req.Family = FamilyINET
	req.Lookup = fakeLookup(t, map[Family]fakeResult{
		FamilyINET: {err: errors.New("nope")},
	}, nil)

	got, err := Collect(context.Background(), req)
	require.Nil(t, got)
	require.Error(t, err)
}
