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

package hook

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML schema for extending the helper sets:
//
//	preconditions:
//	  - name: '^example\.com/util\.Check$'
//	    arg: 0
//	ternaries:
//	  - name: '^example\.com/util\.If$'
type fileConfig struct {
	Preconditions []struct {
		Name string `yaml:"name"`
		Arg  int    `yaml:"arg"`
	} `yaml:"preconditions"`
	Ternaries []struct {
		Name string `yaml:"name"`
	} `yaml:"ternaries"`
}

// LoadFile extends the helper set with entries parsed from the YAML file at
// path. Entries are additive; built-in defaults stay recognized.
func (f *Funcs) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read hook config: %w", err)
	}
	var conf fileConfig
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return fmt.Errorf("parse hook config %q: %w", path, err)
	}

	for _, p := range conf.Preconditions {
		re, err := regexp.Compile(p.Name)
		if err != nil {
			return fmt.Errorf("hook config %q: precondition pattern %q: %w", path, p.Name, err)
		}
		if p.Arg < 0 {
			return fmt.Errorf("hook config %q: precondition %q: negative arg index %d", path, p.Name, p.Arg)
		}
		f.preconditions = append(f.preconditions, precondition{nameRegex: re, argIndex: p.Arg})
	}
	for _, t := range conf.Ternaries {
		re, err := regexp.Compile(t.Name)
		if err != nil {
			return fmt.Errorf("hook config %q: ternary pattern %q: %w", path, t.Name, err)
		}
		f.ternaries = append(f.ternaries, ternary{nameRegex: re})
	}
	return nil
}
