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

package entail

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/entail/config"
	"go.uber.org/goleak"
	"golang.org/x/tools/go/analysis/analysistest"
)

// For descriptions of the purpose of each of the following tests, consult their source files
// located in testdata/src/go.uber.org/<testname>/<testname>.go

func TestRedundant(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, Analyzer, "go.uber.org/redundant")
}

func TestTernary(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, Analyzer, "go.uber.org/ternary")
}

func TestPrecondition(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, Analyzer, "go.uber.org/precondition")
}

func TestPhiMerge(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, Analyzer, "go.uber.org/phimerge")
}

func TestMain(m *testing.M) {
	// Pretty print should be turned off for easier error message matching in test files.
	if err := config.Analyzer.Flags.Set(config.PrettyPrintFlag, "false"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set config flag %s with false: %s", config.PrettyPrintFlag, err)
		os.Exit(1)
	}
	goleak.VerifyTestMain(m)
}
