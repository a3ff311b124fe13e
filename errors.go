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
	"fmt"
)

// errEmptyLookup is the diagnostic normalized in per spec.md section 6: an
// empty, error-free lookup result is treated as though the lookup primitive
// had failed with this error.
var errEmptyLookup = errors.New("returned empty list")

// LookupError wraps a single-family lookup failure. It is never returned
// directly to a [Stream] consumer; it is always wrapped inside a
// [ConnectError] once every queried family has failed.
type LookupError struct {
	Family Family
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Family, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ConnectError is raised to a [Stream] consumer on the first pull once every
// queried family's lookup has failed. Errors holds one LookupError per
// queried family, ordered [IPv6, IPv4] when both were queried, matching
// spec.md's HappyEyeballsConnectError payload ordering.
type ConnectError struct {
	Errors []*LookupError
}

func (e *ConnectError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("happy eyeballs resolution failed: %v", e.Errors[0])
	}
	return fmt.Sprintf("happy eyeballs resolution failed for all families: %v", e.Errors)
}

// Unwrap allows errors.Is/errors.As to reach the underlying per-family
// failures, e.g. errors.Is(err, context.DeadlineExceeded).
func (e *ConnectError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, le := range e.Errors {
		errs[i] = le
	}
	return errs
}

func callLookup(ctx context.Context, req Request, family Family) ([]AddrInfo, error) {
	addrs, err := req.lookupFunc()(ctx, req.Host, req.Port, family, req.SockType, req.Proto, req.Flags)
	if err != nil {
		return nil, &LookupError{Family: family, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &LookupError{Family: family, Err: errEmptyLookup}
	}
	return addrs, nil
}
