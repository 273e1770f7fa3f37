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
)

// MockPrompter implements Prompter with scripted responses. When the
// script runs out, each prompt returns its default.
type MockPrompter struct {
	responses    []any
	currentIndex int
	interactive  bool
	callLog      []string
}

// NewMockPrompter creates a mock prompter answering with responses in order.
func NewMockPrompter(interactive bool, responses ...any) *MockPrompter {
	return &MockPrompter{responses: responses, interactive: interactive}
}

func (mp *MockPrompter) next() (any, bool) {
	if mp.currentIndex >= len(mp.responses) {
		return nil, false
	}
	resp := mp.responses[mp.currentIndex]
	mp.currentIndex++
	return resp, true
}

// PromptString implements Prompter.
func (mp *MockPrompter) PromptString(_ context.Context, msg, def string, validate func(string) error) (string, error) {
	mp.callLog = append(mp.callLog, fmt.Sprintf("PromptString(%s)", msg))
	if !mp.interactive {
		return "", ErrNonInteractive
	}

	resp, ok := mp.next()
	if !ok {
		return def, nil
	}
	str, ok := resp.(string)
	if !ok {
		return "", fmt.Errorf("mock response %v is not a string", resp)
	}
	if validate != nil {
		if err := validate(str); err != nil {
			return "", err
		}
	}
	return str, nil
}

// PromptBool implements Prompter.
func (mp *MockPrompter) PromptBool(_ context.Context, msg string, def bool) (bool, error) {
	mp.callLog = append(mp.callLog, fmt.Sprintf("PromptBool(%s)", msg))
	if !mp.interactive {
		return false, ErrNonInteractive
	}

	resp, ok := mp.next()
	if !ok {
		return def, nil
	}
	b, ok := resp.(bool)
	if !ok {
		return false, fmt.Errorf("mock response %v is not a bool", resp)
	}
	return b, nil
}

// PromptEnum implements Prompter.
func (mp *MockPrompter) PromptEnum(_ context.Context, msg string, options []string, def string) (string, error) {
	mp.callLog = append(mp.callLog, fmt.Sprintf("PromptEnum(%s)", msg))
	if !mp.interactive {
		return "", ErrNonInteractive
	}

	resp, ok := mp.next()
	if !ok {
		return def, nil
	}
	str, ok := resp.(string)
	if !ok {
		return "", fmt.Errorf("mock response %v is not a string", resp)
	}
	if _, err := ValidateEnum(str, options); err != nil {
		return "", err
	}
	return str, nil
}

// IsInteractive implements Prompter.
func (mp *MockPrompter) IsInteractive() bool {
	return mp.interactive
}

// CallLog returns the prompts asked so far.
func (mp *MockPrompter) CallLog() []string {
	return mp.callLog
}
