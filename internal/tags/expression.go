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

// Package tags evaluates cucumber-style tag expressions such as
// "@smoke and not (@slow or @wip)".
package tags

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/gherkit/pkg/errors"
)

// Expression is a compiled tag expression. The zero value and a nil
// *Expression match every tag set.
type Expression struct {
	source  string
	program *vm.Program
}

type env struct {
	Tags []string `expr:"tags"`
}

// Parse compiles a tag expression. An empty or blank expression matches
// everything.
func Parse(source string) (*Expression, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Expression{}, nil
	}

	translated, err := translate(source)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:       "tags",
			Message:     fmt.Sprintf("invalid tag expression %q: %s", source, err),
			SuggestText: `Use tags joined by and/or/not, for example "@smoke and not @slow"`,
		}
	}

	program, err := expr.Compile(translated, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, &errors.ValidationError{
			Field:       "tags",
			Message:     fmt.Sprintf("invalid tag expression %q: %s", source, err),
			SuggestText: `Use tags joined by and/or/not, for example "@smoke and not @slow"`,
		}
	}
	return &Expression{source: source, program: program}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(source string) *Expression {
	e, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return e
}

// Match reports whether tags satisfy the expression.
func (e *Expression) Match(tags []string) bool {
	if e == nil || e.program == nil {
		return true
	}
	out, err := expr.Run(e.program, env{Tags: tags})
	if err != nil {
		return false
	}
	matched, _ := out.(bool)
	return matched
}

// String returns the expression as written.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	return e.source
}

// IsEmpty reports whether the expression matches everything.
func (e *Expression) IsEmpty() bool {
	return e == nil || e.program == nil
}

// translate rewrites a tag expression into expr syntax. Tags become
// membership tests against the tags variable; and/or/not map to
// &&, || and !.
func translate(source string) (string, error) {
	var (
		out     strings.Builder
		depth   int
		operand bool // last token was a tag or closing parenthesis
		runes   = []rune(source)
		i       int
	)

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			if operand {
				return "", fmt.Errorf("unexpected '(' at %d", i+1)
			}
			depth++
			out.WriteString("(")
			i++
			operand = false

		case r == ')':
			if !operand {
				return "", fmt.Errorf("unexpected ')' at %d", i+1)
			}
			depth--
			if depth < 0 {
				return "", fmt.Errorf("unbalanced ')' at %d", i+1)
			}
			out.WriteString(")")
			i++
			operand = true

		case r == '@':
			if operand {
				return "", fmt.Errorf("missing operator before tag at %d", i+1)
			}
			start := i
			i++
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' {
				i++
			}
			tag := string(runes[start:i])
			if tag == "@" {
				return "", fmt.Errorf("empty tag at %d", start+1)
			}
			fmt.Fprintf(&out, "(%q in tags)", tag)
			operand = true

		default:
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			word := strings.ToLower(string(runes[start:i]))
			switch word {
			case "and", "or":
				if !operand {
					return "", fmt.Errorf("%q needs a tag on its left at %d", word, start+1)
				}
				if word == "and" {
					out.WriteString(" && ")
				} else {
					out.WriteString(" || ")
				}
				operand = false
			case "not":
				if operand {
					return "", fmt.Errorf("missing operator before 'not' at %d", start+1)
				}
				out.WriteString("!")
			default:
				if i == start {
					i++
				}
				return "", fmt.Errorf("unexpected %q at %d (tags start with @)", string(runes[start:i]), start+1)
			}
		}
	}

	if depth != 0 {
		return "", fmt.Errorf("unbalanced parentheses")
	}
	if !operand {
		return "", fmt.Errorf("expression is incomplete")
	}
	return out.String(), nil
}
