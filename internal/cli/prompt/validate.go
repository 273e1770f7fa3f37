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
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// MaxInputSize is the largest accepted answer in bytes.
const MaxInputSize = 4096

// ValidateString rejects null bytes, control characters and oversized
// answers.
func ValidateString(input string) error {
	if len(input) > MaxInputSize {
		return fmt.Errorf("input exceeds maximum size of %d bytes", MaxInputSize)
	}
	for i, r := range input {
		if r == 0 {
			return fmt.Errorf("input contains null byte at position %d", i)
		}
		if unicode.IsControl(r) && r != '\t' {
			return fmt.Errorf("input contains invalid control character at position %d", i)
		}
	}
	return nil
}

// ValidateEnum returns input when it is one of options, ignoring case.
func ValidateEnum(input string, options []string) (string, error) {
	input = strings.TrimSpace(input)
	for _, opt := range options {
		if strings.EqualFold(input, opt) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("input must be one of: %s", strings.Join(options, ", "))
}

// ValidateRelativePath accepts a non-empty path that stays inside the
// project directory.
func ValidateRelativePath(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("path is empty")
	}
	if filepath.IsAbs(input) {
		return fmt.Errorf("path must be relative to the project directory")
	}
	clean := filepath.Clean(input)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path must not leave the project directory")
	}
	return nil
}
