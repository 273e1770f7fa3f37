// Copyright 2025 Tom Barlow
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

package completion

import (
	"github.com/spf13/cobra"
)

// CompleteFormats completes report format names.
func CompleteFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		formats := []string{
			"pretty\tFeatures, scenarios and steps as they run",
			"progress\tOne character per step",
			"junit\tJUnit XML for CI servers",
			"json\tCucumber JSON",
		}
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteExporters completes span exporter names.
func CompleteExporters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		exporters := []string{
			"none\tDo not export spans",
			"stdout\tPrint spans to stderr",
			"otlp-http\tOTLP over HTTP",
			"otlp-grpc\tOTLP over gRPC",
		}
		return exporters, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteColors completes color modes.
func CompleteColors(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp
	})
}
