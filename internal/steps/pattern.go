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
	"strings"

	cucumberexpressions "github.com/cucumber/cucumber-expressions/go/v16"
)

// Expression matches step text against a compiled step pattern.
type Expression interface {
	// Match returns the text captured for each parameter, or false when
	// text does not match.
	Match(text string) ([]string, bool)

	// Params is the number of values the pattern captures.
	Params() int
}

var placeholderRe = regexp.MustCompile(`\{(\w*)\}`)

var parameterTypes = cucumberexpressions.NewParameterTypeRegistry()

// IsRegexp reports whether pattern is written as a raw regular expression
// rather than a cucumber expression. Raw expressions start with ^ or end
// with $.
func IsRegexp(pattern string) bool {
	return strings.HasPrefix(pattern, "^") || strings.HasSuffix(pattern, "$")
}

// CompilePattern compiles a step pattern.
//
// Cucumber expressions are literal text with parameters, optional text and
// alternatives:
//
//	I add {int} and {int}
//	I convert {float} degrees {word} to {word}
//	the operation should fail with {string}
//	I have {int} cucumber(s) in my belly/stomach
//
// {any} is an alias for the anonymous parameter {}.
//
// Patterns starting with ^ or ending with $ are raw regular expressions.
// They always match the whole step text: a missing anchor is added.
func CompilePattern(pattern string) (Expression, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("pattern is empty")
	}

	if IsRegexp(pattern) {
		body := strings.TrimPrefix(pattern, "^")
		if strings.HasSuffix(body, "$") && !strings.HasSuffix(body, `\$`) {
			body = strings.TrimSuffix(body, "$")
		}
		re, err := regexp.Compile("^(?:" + body + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression: %w", err)
		}
		return &regexpExpression{re: re}, nil
	}

	source := strings.ReplaceAll(pattern, "{any}", "{}")
	expr, err := cucumberexpressions.NewCucumberExpression(source, parameterTypes)
	if err != nil {
		return nil, fmt.Errorf("invalid cucumber expression: %w", err)
	}
	return &cucumberExpression{expr: expr, params: countParameters(source)}, nil
}

type regexpExpression struct {
	re *regexp.Regexp
}

func (e *regexpExpression) Match(text string) ([]string, bool) {
	sub := e.re.FindStringSubmatch(text)
	if sub == nil {
		return nil, false
	}
	return sub[1:], true
}

func (e *regexpExpression) Params() int { return e.re.NumSubexp() }

type cucumberExpression struct {
	expr   cucumberexpressions.Expression
	params int
}

func (e *cucumberExpression) Match(text string) ([]string, bool) {
	args, err := e.expr.Match(text)
	if err != nil || args == nil {
		return nil, false
	}
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = argumentText(arg)
	}
	return out, true
}

func (e *cucumberExpression) Params() int { return e.params }

// argumentText returns the unquoted value for {string} and the matched text
// for every other parameter type, leaving conversion to the handler's
// parameter type.
func argumentText(arg *cucumberexpressions.Argument) (text string) {
	if v := arg.Group().Value(); v != nil {
		text = *v
	}
	defer func() {
		// Built-in transforms panic on values they cannot represent, such as
		// an {int} that overflows. The raw text is kept in that case.
		_ = recover()
	}()
	if s, ok := arg.GetValue().(string); ok {
		text = s
	}
	return text
}

// countParameters counts the unescaped parameters in a cucumber expression.
func countParameters(source string) int {
	n := 0
	escaped := false
	for _, r := range source {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '{':
			n++
		}
	}
	return n
}
