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

// Command eyeball resolves a host with the happyeyeballs package and prints
// the resulting address stream in order, one candidate per line, so the
// interleaving can be inspected directly against a live or test resolver.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/Jigsaw-Code/happyeyeballs"
	"github.com/Jigsaw-Code/happyeyeballs/config"
	"github.com/Jigsaw-Code/happyeyeballs/dnslookup"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags...] <host>\n", path.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	verboseFlag := flag.Bool("v", false, "Enable debug output")
	portFlag := flag.String("port", "443", "Port to resolve for")
	familyFlag := flag.String("family", "", "Restrict resolution to inet or inet6 (default both)")
	simpleFlag := flag.Bool("simple", false, "Use ResolveSimple instead of the staggered Resolve")
	dnsServerFlag := flag.String("dns-server", "", "Query this DNS server directly instead of the system resolver, host:port")
	configFlag := flag.String("config", "", "Path to a YAML file of defaults, see config.Config")
	timeoutFlag := flag.Duration("timeout", 5*time.Second, "Overall timeout for the resolution")

	flag.Parse()

	logLevel := slog.LevelInfo
	if *verboseFlag {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
		Level:   logLevel,
	})))

	host := strings.TrimSpace(flag.Arg(0))
	if host == "" {
		slog.Error("need to pass the host to resolve on the command line")
		os.Exit(1)
	}

	var conf config.Config
	if *configFlag != "" {
		var err error
		conf, err = config.Load(*configFlag)
		if err != nil {
			slog.Error("failed to load config", "path", *configFlag, "error", err)
			os.Exit(1)
		}
	}

	port := *portFlag
	if conf.Port != "" && *portFlag == "443" {
		port = conf.Port
	}

	req := happyeyeballs.NewRequest(host, port)
	switch strings.ToLower(*familyFlag) {
	case "inet", "ip4", "ipv4":
		req.Family = happyeyeballs.FamilyINET
	case "inet6", "ip6", "ipv6":
		req.Family = happyeyeballs.FamilyINET6
	}
	req = conf.ApplyTo(req)

	if *dnsServerFlag != "" {
		req.Lookup = dnslookup.New(dnslookup.Config{Server: *dnsServerFlag})
	} else if conf.DNS != nil {
		req.Lookup = dnslookup.New(dnslookup.Config{Server: conf.DNS.Server, Net: conf.DNS.Net, Timeout: conf.DNS.Timeout})
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	resolve := happyeyeballs.Resolve
	if *simpleFlag {
		resolve = happyeyeballs.ResolveSimple
	}

	stream := resolve(ctx, req)
	defer stream.Close()

	count := 0
	for {
		addr, ok, err := stream.Next()
		if err != nil {
			slog.Error("resolution failed", "host", host, "error", err)
			os.Exit(1)
		}
		if !ok {
			break
		}
		count++
		fmt.Printf("%s\t%s\n", addr.Family, formatSockAddr(addr))
	}
	slog.Debug("resolution done", "host", host, "count", count)
}

func formatSockAddr(addr happyeyeballs.AddrInfo) string {
	if addr.Family == happyeyeballs.FamilyINET6 {
		return fmt.Sprintf("[%s]:%d", addr.Addr.IP, addr.Addr.Port)
	}
	return fmt.Sprintf("%s:%d", addr.Addr.IP, addr.Addr.Port)
}
