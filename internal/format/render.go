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

package format

import (
	"bytes"
	"io"
	"os"
	"regexp"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// ansiEscapeRegex matches ANSI escape sequences for sanitization.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// SanitizeANSI removes ANSI escape sequences from a string. Feature file
// text is sanitized before it reaches a terminal.
func SanitizeANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// IsTTY reports whether w is a terminal that should receive colour.
// Returns false if w is not a file, NO_COLOR is set, or TERM is "dumb" or
// empty.
func IsTTY(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	termEnv := os.Getenv("TERM")
	if termEnv == "dumb" || termEnv == "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// HighlightCode applies terminal syntax highlighting. Unknown languages
// and highlighter errors return the code unchanged.
func HighlightCode(code, language string) string {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, language, "terminal256", "monokai"); err != nil {
		return code
	}
	return buf.String()
}

// RenderMarkdown renders markdown for the terminal, wrapping at width.
// Falls back to the plain content if the renderer fails.
func RenderMarkdown(content string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(SanitizeANSI(content))
	if err != nil {
		return content
	}
	return rendered
}
