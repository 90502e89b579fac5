//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config implements a virtual analyzer whose sole purpose is to pass
// user-facing configurations down to the other analyzers. Flags are attached
// to this analyzer, so drivers configure the whole system by configuring one
// analyzer (optionally lifting the flags to the top level, as cmd/entail
// does).
package config

import (
	"flag"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/entail/implication"
	"golang.org/x/tools/go/analysis"
)

// Flag names attached to the config analyzer; exported so that drivers and
// tests can set them programmatically.
const (
	// MaxTierFlag caps the implication tier used when relating guards.
	MaxTierFlag = "max-tier"
	// HookConfigFlag points at a YAML file declaring extra helper functions.
	HookConfigFlag = "hook-config"
	// PrettyPrintFlag enables colored output in the reported messages.
	PrettyPrintFlag = "pretty-print"
)

// Config stores the parsed user-facing configurations.
type Config struct {
	// MaxTier caps the implication tier the checker may use. Lower tiers
	// trade precision for speed on large packages.
	MaxTier implication.Tier
	// HookConfigFile is an optional YAML file declaring extra
	// precondition-check and ternary helper functions, merged on top of the
	// built-in set.
	HookConfigFile string
	// PrettyPrint enables colored output in the reported messages.
	PrettyPrint bool
}

const _doc = "Read the user-facing configurations (flags) and pass them down to the other analyzers."

// Analyzer is the virtual analyzer that holds and distributes the flags.
var Analyzer = &analysis.Analyzer{
	Name:       "entail_config",
	Doc:        _doc,
	Run:        run,
	Flags:      newFlagSet(),
	ResultType: reflect.TypeOf((*Config)(nil)),
}

func newFlagSet() flag.FlagSet {
	fs := flag.NewFlagSet("entail_config", flag.ExitOnError)
	fs.String(MaxTierFlag, "full",
		"The maximum implication tier to use when relating guards: one of "+
			"\"syntactic\", \"ssa\", or \"full\".")
	fs.String(HookConfigFlag, "",
		"Path to a YAML file declaring additional precondition-check and ternary helper functions.")
	fs.Bool(PrettyPrintFlag, true, "Pretty print the error messages.")
	return *fs
}

func run(pass *analysis.Pass) (interface{}, error) {
	conf := &Config{MaxTier: implication.TierFull, PrettyPrint: true}

	var err error
	pass.Analyzer.Flags.VisitAll(func(f *flag.Flag) {
		if err != nil {
			return
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			err = fmt.Errorf("flag %q does not implement flag.Getter", f.Name)
			return
		}
		switch f.Name {
		case MaxTierFlag:
			conf.MaxTier, err = parseTier(getter.Get().(string))
		case HookConfigFlag:
			conf.HookConfigFile = getter.Get().(string)
		case PrettyPrintFlag:
			conf.PrettyPrint = getter.Get().(bool)
		}
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

func parseTier(s string) (implication.Tier, error) {
	switch strings.ToLower(s) {
	case "syntactic", "1":
		return implication.TierSyntactic, nil
	case "ssa", "2":
		return implication.TierSSA, nil
	case "full", "3":
		return implication.TierFull, nil
	}
	return 0, fmt.Errorf("unrecognized implication tier %q", s)
}
