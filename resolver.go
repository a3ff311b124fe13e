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
	"sync"
	"time"
)

// item is the unit carried on a [Stream]'s internal channel: exactly one of
// addr or err is meaningful, mirroring the two-result-or-error shape of the
// teacher's own dial-attempt channel in HappyEyeballsStreamDialer.
type item struct {
	addr AddrInfo
	err  error
}

// Stream is a lazy, pull-based sequence of [AddrInfo] candidates. The
// lookups start as soon as the Stream is created, but each address is handed
// over only when Next is called; a consumer that stops pulling and calls
// Close leaves no goroutine behind.
//
// A Stream is not safe for concurrent use by multiple goroutines.
type Stream struct {
	out    chan item
	cancel context.CancelFunc
	once   sync.Once
}

func newStream(ctx context.Context) (*Stream, context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	return &Stream{out: make(chan item), cancel: cancel}, runCtx
}

// Next blocks until the resolver produces another address, fails, or is
// exhausted. A non-nil error is terminal: the underlying goroutine has
// already exited and no further call to Next will return an address. The
// final, successful call to Next returns ok == false with a nil error.
func (s *Stream) Next() (AddrInfo, bool, error) {
	it, open := <-s.out
	if !open {
		return AddrInfo{}, false, nil
	}
	if it.err != nil {
		return AddrInfo{}, false, it.err
	}
	return it.addr, true, nil
}

// Close signals the producing goroutine to stop and releases its resources.
// It is safe to call Close more than once, and safe to call it after Next
// has already reported exhaustion or an error. Callers that intend to drain
// a Stream to completion may skip it, but should otherwise always defer it.
func (s *Stream) Close() {
	s.once.Do(s.cancel)
}

// send delivers a as the next item, returning false if ctx was cancelled
// before the consumer pulled it -- in which case the caller should abandon
// whatever it was doing and unwind, since the consumer is gone.
func (s *Stream) send(ctx context.Context, a AddrInfo) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case s.out <- item{addr: a}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream) sendAll(ctx context.Context, addrs []AddrInfo) bool {
	for _, a := range addrs {
		if !s.send(ctx, a) {
			return false
		}
	}
	return true
}

func (s *Stream) sendErr(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	select {
	case s.out <- item{err: err}:
	case <-ctx.Done():
	}
}

// lookupResult is what one family's background lookup goroutine reports.
// err, when set, is always a *LookupError, carrying its own Family.
type lookupResult struct {
	addrs []AddrInfo
	err   *LookupError
}

// startLookup runs callLookup for family in its own goroutine and reports the
// outcome on a channel buffered for one, so the goroutine can never block
// delivering its only message even if nobody is listening by then -- the
// case once a [Stream] consumer abandons ship via Close.
func startLookup(ctx context.Context, req Request, family Family) <-chan lookupResult {
	ch := make(chan lookupResult, 1)
	go func() {
		addrs, err := callLookup(ctx, req, family)
		var lerr *LookupError
		if err != nil {
			lerr = err.(*LookupError)
		}
		ch <- lookupResult{addrs: addrs, err: lerr}
	}()
	return ch
}

// Resolve starts the full RFC 8305 dual-stack race: an IPv6 lookup and an
// IPv4 lookup run concurrently, biased toward IPv6 by the resolution-delay
// timer, and their results are interleaved per section 4.3 as they become
// known. If req.Host is an IP literal, or req.Family restricts the query to
// a single family, the race is skipped entirely.
//
// The returned Stream's producing goroutine runs until it is exhausted or
// ctx (or Stream.Close) is cancelled; it is always safe, and generally
// necessary, to defer a call to Close on the result.
func Resolve(ctx context.Context, req Request) *Stream {
	s, runCtx := newStream(ctx)
	go s.runStaggered(runCtx, req)
	return s
}

func (s *Stream) runStaggered(ctx context.Context, req Request) {
	defer close(s.out)

	if addr, ok := literal(req); ok {
		s.send(ctx, addr)
		return
	}

	if req.Family != FamilyUnspecified {
		s.emitSingleFamily(ctx, req, req.Family)
		return
	}

	const primaryFamily, secondaryFamily = FamilyINET6, FamilyINET
	primaryCh := startLookup(ctx, req, primaryFamily)
	secondaryCh := startLookup(ctx, req, secondaryFamily)

	select {
	case primary := <-primaryCh:
		s.emitPrimaryFirst(ctx, req, primary, secondaryCh)
	case secondary := <-secondaryCh:
		s.emitSecondaryFirst(ctx, req, secondary, primaryCh)
	case <-ctx.Done():
	}
}

func (s *Stream) emitSingleFamily(ctx context.Context, req Request, family Family) {
	addrs, err := callLookup(ctx, req, family)
	if err != nil {
		s.sendErr(ctx, &ConnectError{Errors: []*LookupError{err.(*LookupError)}})
		return
	}
	s.sendAll(ctx, addrs)
}

// emitPrimaryFirst handles the case where the IPv6 lookup settles before the
// IPv4 one. The first firstAddrFamilyCount IPv6 addresses never depend on
// IPv4 at all, so they stream immediately; only the remainder waits,
// indefinitely and without a timer, for IPv4 to settle.
func (s *Stream) emitPrimaryFirst(ctx context.Context, req Request, primary lookupResult, secondaryCh <-chan lookupResult) {
	burst, rest := splitBurst(primary.addrs, req.FirstAddrFamilyCount)
	if !s.sendAll(ctx, burst) {
		return
	}

	var secondary lookupResult
	select {
	case secondary = <-secondaryCh:
	case <-ctx.Done():
		return
	}

	if primary.err != nil && secondary.err != nil {
		s.sendErr(ctx, &ConnectError{Errors: []*LookupError{primary.err, secondary.err}})
		return
	}
	s.sendAll(ctx, roundRobin(secondary.addrs, rest))
}

// emitSecondaryFirst handles the case where the IPv4 lookup settles before
// the IPv6 one. A failed IPv4 lookup has nothing worth racing against IPv6,
// so the resolver falls back to waiting for IPv6 outright; a successful one
// arms the resolution-delay timer to give the still-pending IPv6 lookup a
// bounded chance to win before IPv4 is emitted on its own.
func (s *Stream) emitSecondaryFirst(ctx context.Context, req Request, secondary lookupResult, primaryCh <-chan lookupResult) {
	if secondary.err != nil {
		var primary lookupResult
		select {
		case primary = <-primaryCh:
		case <-ctx.Done():
			return
		}
		s.emitBoth(ctx, req, primary, secondary)
		return
	}

	timer := time.NewTimer(req.ResolutionDelay)
	defer timer.Stop()

	select {
	case primary := <-primaryCh:
		s.emitBoth(ctx, req, primary, secondary)
	case <-timer.C:
		s.emitSecondaryOnly(ctx, secondary, primaryCh)
	case <-ctx.Done():
	}
}

// emitBoth is reached once both families' results are known before any
// timer fired -- the ordinary case -- and applies the full combine() rule.
func (s *Stream) emitBoth(ctx context.Context, req Request, primary, secondary lookupResult) {
	if primary.err != nil && secondary.err != nil {
		s.sendErr(ctx, &ConnectError{Errors: []*LookupError{primary.err, secondary.err}})
		return
	}
	s.sendAll(ctx, combine(primary.addrs, secondary.addrs, req.FirstAddrFamilyCount))
}

// emitSecondaryOnly is reached once the resolution-delay timer has fired
// with IPv6 still pending: IPv4 is emitted on its own, in its native order,
// with no burst or interleaving. If IPv6 later succeeds anyway, its
// addresses are appended as a plain tail -- never spliced back in -- since a
// consumer may already be partway through dialing the IPv4 candidates.
func (s *Stream) emitSecondaryOnly(ctx context.Context, secondary lookupResult, primaryCh <-chan lookupResult) {
	if !s.sendAll(ctx, secondary.addrs) {
		return
	}
	select {
	case primary := <-primaryCh:
		if primary.err == nil {
			s.sendAll(ctx, primary.addrs)
		}
	case <-ctx.Done():
	}
}

// ResolveSimple performs a single combined lookup instead of racing two
// family-restricted ones, then applies the same burst-and-interleave
// ordering to the result. It is the resolver's equivalent of a plain
// getaddrinfo(AF_UNSPEC) call: no resolution-delay bias, no early IPv6
// burst ahead of a still-unknown IPv4 answer, just one round trip ordered
// after the fact. Useful against a lookup primitive that cannot be split by
// family, or when the staggering behavior of [Resolve] isn't wanted.
func ResolveSimple(ctx context.Context, req Request) *Stream {
	s, runCtx := newStream(ctx)
	go s.runSimple(runCtx, req)
	return s
}

func (s *Stream) runSimple(ctx context.Context, req Request) {
	defer close(s.out)

	if addr, ok := literal(req); ok {
		s.send(ctx, addr)
		return
	}

	if req.Family != FamilyUnspecified {
		s.emitSingleFamily(ctx, req, req.Family)
		return
	}

	addrs, err := callLookup(ctx, req, FamilyUnspecified)
	if err != nil {
		s.sendErr(ctx, &ConnectError{Errors: []*LookupError{err.(*LookupError)}})
		return
	}

	var v6, v4 []AddrInfo
	for _, a := range addrs {
		if a.Family == FamilyINET6 {
			v6 = append(v6, a)
		} else {
			v4 = append(v4, a)
		}
	}
	s.sendAll(ctx, combine(v6, v4, req.FirstAddrFamilyCount))
}

// Collect drains [Resolve] eagerly, returning every candidate at once. It is
// a convenience for callers that don't need the laziness of a [Stream], not
// a recommended default: a dialer that can stop as soon as one candidate
// connects should pull from Resolve directly instead.
func Collect(ctx context.Context, req Request) ([]AddrInfo, error) {
	s := Resolve(ctx, req)
	defer s.Close()

	var all []AddrInfo
	for {
		addr, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, addr)
	}
}
