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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/entail/implication"
	"go.uber.org/goleak"
	"golang.org/x/tools/go/analysis"
)

func TestParseTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want implication.Tier
		ok   bool
	}{
		{"syntactic", implication.TierSyntactic, true},
		{"1", implication.TierSyntactic, true},
		{"ssa", implication.TierSSA, true},
		{"2", implication.TierSSA, true},
		{"full", implication.TierFull, true},
		{"3", implication.TierFull, true},
		{"FULL", implication.TierFull, true},
		{"everything", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			tier, err := parseTier(tt.in)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, tier)
		})
	}
}

// runConfig runs the virtual analyzer against the current flag values. Not
// parallel with other flag-mutating tests since the flag set is global.
func runConfig(t *testing.T) (*Config, error) {
	t.Helper()
	res, err := Analyzer.Run(&analysis.Pass{Analyzer: Analyzer})
	if err != nil {
		return nil, err
	}
	return res.(*Config), nil
}

func TestFlagParsing(t *testing.T) {
	conf, err := runConfig(t)
	require.NoError(t, err)
	require.Equal(t, implication.TierFull, conf.MaxTier)
	require.Empty(t, conf.HookConfigFile)
	require.True(t, conf.PrettyPrint)

	require.NoError(t, Analyzer.Flags.Set(MaxTierFlag, "ssa"))
	require.NoError(t, Analyzer.Flags.Set(HookConfigFlag, "hooks.yaml"))
	require.NoError(t, Analyzer.Flags.Set(PrettyPrintFlag, "false"))
	defer func() {
		require.NoError(t, Analyzer.Flags.Set(MaxTierFlag, "full"))
		require.NoError(t, Analyzer.Flags.Set(HookConfigFlag, ""))
		require.NoError(t, Analyzer.Flags.Set(PrettyPrintFlag, "true"))
	}()

	conf, err = runConfig(t)
	require.NoError(t, err)
	require.Equal(t, implication.TierSSA, conf.MaxTier)
	require.Equal(t, "hooks.yaml", conf.HookConfigFile)
	require.False(t, conf.PrettyPrint)
}

func TestFlagParsingBadTier(t *testing.T) {
	require.NoError(t, Analyzer.Flags.Set(MaxTierFlag, "everything"))
	defer func() {
		require.NoError(t, Analyzer.Flags.Set(MaxTierFlag, "full"))
	}()

	_, err := runConfig(t)
	require.ErrorContains(t, err, "unrecognized implication tier")
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
