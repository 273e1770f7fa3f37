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

package prompt

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// SurveyPrompter implements Prompter on the survey library.
type SurveyPrompter struct {
	interactive bool
}

// NewSurveyPrompter creates a prompter; when interactive is false every
// prompt fails with ErrNonInteractive.
func NewSurveyPrompter(interactive bool) *SurveyPrompter {
	return &SurveyPrompter{interactive: interactive}
}

// PromptString implements Prompter.
func (sp *SurveyPrompter) PromptString(ctx context.Context, msg, def string, validate func(string) error) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}

	var result string
	prompt := &survey.Input{Message: msg, Default: def}
	err := survey.AskOne(prompt, &result, survey.WithValidator(func(ans interface{}) error {
		str, ok := ans.(string)
		if !ok {
			return nil
		}
		if err := ValidateString(str); err != nil {
			return err
		}
		if validate != nil {
			return validate(str)
		}
		return nil
	}))
	return result, err
}

// PromptBool implements Prompter.
func (sp *SurveyPrompter) PromptBool(ctx context.Context, msg string, def bool) (bool, error) {
	if !sp.interactive {
		return false, ErrNonInteractive
	}

	var result bool
	err := survey.AskOne(&survey.Confirm{Message: msg, Default: def}, &result)
	return result, err
}

// PromptEnum implements Prompter.
func (sp *SurveyPrompter) PromptEnum(ctx context.Context, msg string, options []string, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided for %q", msg)
	}

	var result string
	err := survey.AskOne(&survey.Select{Message: msg, Options: options, Default: def}, &result)
	return result, err
}

// IsInteractive implements Prompter.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}
