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

// Package entail implements the top-level analyzer that retrieves the
// diagnostics from the frontend analyzer and reports them.
package entail

import (
	"fmt"
	"regexp"

	"go.uber.org/entail/config"
	"go.uber.org/entail/frontend"
	"go.uber.org/entail/util/analysishelper"
	"golang.org/x/tools/go/analysis"
)

const _doc = "Check this package for branch conditions whose outcome is already decided by a " +
	"dominating guard, making the branch redundant or the guarded code unreachable"

// Analyzer is the top-level analyzer instance - it coordinates the sub-analyzers and reports
// redundant conditions in this package. It is needed here for nogo to recognize the package.
var Analyzer = &analysis.Analyzer{
	Name:      "entail",
	Doc:       _doc,
	Run:       run,
	FactTypes: []analysis.Fact{},
	Requires:  []*analysis.Analyzer{config.Analyzer, frontend.Analyzer},
}

func run(p *analysis.Pass) (interface{}, error) {
	pass := analysishelper.NewEnhancedPass(p)
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	result := pass.ResultOf[frontend.Analyzer].(*analysishelper.Result[[]analysis.Diagnostic])
	if result.Err != nil {
		return nil, result.Err
	}

	for _, d := range result.Res {
		if conf.PrettyPrint {
			d.Message = prettyPrintErrorMessage(d.Message)
		}
		pass.Report(d)
	}

	return nil, nil
}

var codeReferencePattern = regexp.MustCompile("\\`(.*?)\\`")
var verdictPattern = regexp.MustCompile(`(always (?:true|false))`)

// prettyPrintErrorMessage is used in error reporting to post process and pretty print the output with colors
func prettyPrintErrorMessage(msg string) string {
	errorStr := fmt.Sprintf("\x1b[%dm%s\x1b[0m", 31, "error: ")    // red
	codeStr := fmt.Sprintf("\u001B[%dm%s\u001B[0m", 95, "`${1}`")  // magenta
	verdictStr := fmt.Sprintf("\u001B[%dm%s\u001B[0m", 1, "${1}")  // bold

	msg = verdictPattern.ReplaceAllString(msg, verdictStr)
	msg = codeReferencePattern.ReplaceAllString(msg, codeStr)
	msg = errorStr + msg
	return msg
}
