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

/*
Package happyeyeballs implements the address-resolution half of
[Happy Eyeballs v2] (RFC 8305): given a hostname or IP literal and a port, it
produces a lazy, ordered stream of candidate [AddrInfo] endpoints, racing an
IPv6 and an IPv4 lookup and interleaving their results so that a caller
dialing the stream in order gets the fastest plausible time-to-first-byte on
dual-stack hosts.

It deliberately stops at resolution: dialing the emitted addresses, caching
results, and wiring a real lookup primitive (see the lookup functions this
package and the dnslookup subpackage provide, or bring your own) are all
left to the caller, the same separation the teacher's own
transport/happyeyeballs package draws between resolving and connecting.

[Happy Eyeballs v2]: https://datatracker.ietf.org/doc/html/rfc8305
*/
package happyeyeballs
