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

package steps

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var snippetArgRe = regexp.MustCompile(`("[^"]*")|(-?\b\d*\.\d+\b)|(-?\b\d+\b)`)

var titleCaser = cases.Title(language.English)

// Snippet proposes a step definition for undefined step text. Quoted
// strings become {string}, decimals {float} and integers {int}.
type Snippet struct {
	Pattern  string
	FuncName string
	Params   []string
}

// NewSnippet derives a snippet from step text.
func NewSnippet(text string) Snippet {
	var (
		b      strings.Builder
		params []string
		last   int
	)
	for _, m := range snippetArgRe.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(escapeLiteral(text[last:m[0]]))
		switch {
		case m[2] >= 0:
			b.WriteString("{string}")
			params = append(params, "string")
		case m[4] >= 0:
			b.WriteString("{float}")
			params = append(params, "float64")
		default:
			b.WriteString("{int}")
			params = append(params, "int")
		}
		last = m[1]
	}
	b.WriteString(escapeLiteral(text[last:]))

	return Snippet{
		Pattern:  b.String(),
		FuncName: funcName(b.String()),
		Params:   params,
	}
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, "{", `\{`, "/", `\/`)

// escapeLiteral escapes text that cucumber expressions would otherwise read
// as optional text, a parameter or an alternative.
func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// Code renders the snippet as Go source registering against a registry
// variable named reg.
func (s Snippet) Code() string {
	args := []string{"sc *steps.Context"}
	for i, p := range s.Params {
		args = append(args, fmt.Sprintf("arg%d %s", i+1, p))
	}

	pattern := "`" + s.Pattern + "`"
	if strings.Contains(s.Pattern, "`") {
		pattern = strconv.Quote(s.Pattern)
	}

	return fmt.Sprintf("func %s(%s) error {\n\treturn steps.ErrPending\n}\n\nreg.Step(%s, %s)\n",
		s.FuncName, strings.Join(args, ", "), pattern, s.FuncName)
}

// funcName builds a lowerCamelCase identifier from the literal words of a
// pattern, skipping placeholders.
func funcName(pattern string) string {
	words := strings.FieldsFunc(placeholderRe.ReplaceAllString(pattern, " "), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, w := range words {
		if b.Len() == 0 {
			if unicode.IsDigit([]rune(w)[0]) {
				continue
			}
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(titleCaser.String(w))
	}
	if b.Len() == 0 {
		return "stepDefinition"
	}
	return b.String()
}
