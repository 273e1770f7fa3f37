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

package shared

import (
	"github.com/tombee/gherkit/internal/config"
	"github.com/tombee/gherkit/internal/discovery"
	"github.com/tombee/gherkit/internal/gherkin"
)

// FeatureTargets turns path arguments into discovery targets, falling back
// to the configured feature paths.
func FeatureTargets(cfg *config.Config, args []string) []discovery.Target {
	paths := args
	if len(paths) == 0 {
		paths = cfg.Features.Paths
	}
	targets := make([]discovery.Target, 0, len(paths))
	for _, p := range paths {
		targets = append(targets, discovery.ParseTarget(p))
	}
	return targets
}

// LoadFeatures discovers and parses the feature files named by args.
// Line selections ("file:12") narrow each feature to those scenarios.
func LoadFeatures(cfg *config.Config, args []string) ([]*gherkin.Feature, error) {
	opts := discovery.Options{Include: cfg.Features.Include}
	if cfg.Features.Exclude != nil {
		opts.Exclude = append(discovery.DefaultExcludePatterns(), cfg.Features.Exclude...)
	}

	targets, err := discovery.Discover(FeatureTargets(cfg, args), opts)
	if err != nil {
		return nil, err
	}

	features := make([]*gherkin.Feature, 0, len(targets))
	for _, t := range targets {
		f, err := gherkin.Load(t.Path)
		if err != nil {
			return nil, err
		}
		if len(t.Lines) > 0 {
			f.FilterLines(t.Lines)
		}
		features = append(features, f)
	}
	return features, nil
}
