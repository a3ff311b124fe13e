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

// Package config loads the defaults for the eyeball CLI from a YAML file,
// the way the teacher's x/configyaml package loads dialer configuration:
// strict field matching, sane zero-value defaults applied after decode.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jigsaw-Code/happyeyeballs"
)

// Config is the on-disk shape of the eyeball CLI's defaults file.
type Config struct {
	// Port is used when the -port flag is left at its default.
	Port string `yaml:"port"`
	// Family restricts resolution to "inet", "inet6", or "" (both).
	Family string `yaml:"family"`
	// ResolutionDelay overrides [happyeyeballs.DefaultResolutionDelay], as a
	// duration string like "50ms".
	ResolutionDelay string `yaml:"resolution_delay"`
	// FirstAddrFamilyCount overrides the default burst size of 1.
	FirstAddrFamilyCount int `yaml:"first_addr_family_count"`
	// DNS, when set, directs the CLI to use dnslookup.New against this
	// server instead of happyeyeballs.SystemLookup.
	DNS *DNSConfig `yaml:"dns"`
}

// DNSConfig mirrors dnslookup.Config's fields for YAML decoding; the config
// package does not import dnslookup itself to avoid tying the CLI's config
// schema to that subpackage's internals.
type DNSConfig struct {
	Server  string        `yaml:"server"`
	Net     string        `yaml:"net"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads and strictly decodes the YAML file at path. An absent file is
// not an error: the zero Config, which Family/ResolutionDelay/etc. below
// translate to happyeyeballs' own defaults, is returned instead.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)

	var conf Config
	if err := decoder.Decode(&conf); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return conf, nil
}

// family translates the config's textual family into a [happyeyeballs.Family],
// defaulting to FamilyUnspecified for an empty or unrecognized value.
func (c Config) family() happyeyeballs.Family {
	switch strings.ToLower(c.Family) {
	case "inet", "ip4", "ipv4":
		return happyeyeballs.FamilyINET
	case "inet6", "ip6", "ipv6":
		return happyeyeballs.FamilyINET6
	default:
		return happyeyeballs.FamilyUnspecified
	}
}

// resolutionDelay parses ResolutionDelay, falling back to zero on an empty or
// unparsable value; ApplyTo treats zero as "not configured" and leaves the
// request's delay unchanged.
func (c Config) resolutionDelay() time.Duration {
	if c.ResolutionDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ResolutionDelay)
	if err != nil {
		return 0
	}
	return d
}

// ApplyTo sets every configured default on req that req doesn't already
// specify more concretely, returning the result. A field counts as
// unspecified while it still holds the value [happyeyeballs.NewRequest]
// gives it (FamilyUnspecified, DefaultResolutionDelay, a burst count of 1);
// a field the caller changed from that value is left alone.
func (c Config) ApplyTo(req happyeyeballs.Request) happyeyeballs.Request {
	if req.Family == happyeyeballs.FamilyUnspecified {
		req.Family = c.family()
	}
	if d := c.resolutionDelay(); d != 0 && req.ResolutionDelay == happyeyeballs.DefaultResolutionDelay {
		req.ResolutionDelay = d
	}
	if c.FirstAddrFamilyCount != 0 && req.FirstAddrFamilyCount == 1 {
		req.FirstAddrFamilyCount = c.FirstAddrFamilyCount
	}
	return req
}
