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

// Package prompt collects interactive answers for commands such as init.
package prompt

import (
	"context"
	"errors"
)

// ErrNonInteractive is returned when a prompt is attempted without a
// terminal.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter asks the user questions. SurveyPrompter talks to the terminal;
// MockPrompter replays scripted answers in tests.
type Prompter interface {
	// PromptString asks for free text, validated by validate when non-nil.
	PromptString(ctx context.Context, msg, def string, validate func(string) error) (string, error)

	// PromptBool asks a yes/no question.
	PromptBool(ctx context.Context, msg string, def bool) (bool, error)

	// PromptEnum asks the user to pick one of options.
	PromptEnum(ctx context.Context, msg string, options []string, def string) (string, error)

	// IsInteractive reports whether prompts can be displayed.
	IsInteractive() bool
}
