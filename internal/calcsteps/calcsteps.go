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

// Package calcsteps is the step library for the calculator and temperature
// converter features.
package calcsteps

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tombee/gherkit/internal/assert"
	"github.com/tombee/gherkit/internal/calculator"
	"github.com/tombee/gherkit/internal/steps"
)

// Context keys
const (
	KeyCalculator = "calculator"
	KeyConverter  = "converter"
	KeyResult     = "result"
	KeyScale      = "scale"
	KeyError      = "error"
)

const (
	// arithmetic results are compared relative to their magnitude
	resultTolerance = 1e-9

	// temperatures are written with at most a few decimals
	temperatureTolerance = 1e-6
)

var evaluator = assert.NewEvaluator()

// Register adds the calculator, converter and expression steps to reg.
func Register(reg *steps.Registry) {
	reg.Given("I have a calculator", haveCalculator)
	reg.When("I add {int} and {int}", add)
	reg.When("I subtract {int} from {int}", subtract)
	reg.When("I multiply {int} by {int}", multiply)
	reg.When("I divide {float} by {float}", divide)
	reg.When("I add the following numbers:", addTable)
	reg.Then("the result should be {float}", resultShouldBe)
	reg.Then("the operation should fail with {string}", shouldFailWith)
	reg.Then("the operation should succeed", shouldSucceed)

	reg.Given("I have a temperature converter", haveConverter)
	reg.When("I convert {float} degrees {word} to {word}", convert)
	reg.When("I convert the result back to {word}", convertBack)
	reg.When("I convert the following temperatures:", convertTable)
	reg.Then("the result should be {float} degrees {word}", temperatureShouldBe)

	reg.Then("the expression {string} holds", expressionHolds)
}

func haveCalculator(sc *steps.Context) {
	sc.Set(KeyCalculator, calculator.New())
}

func calc(sc *steps.Context) (*calculator.Calculator, error) {
	c, err := steps.Lookup[*calculator.Calculator](sc, KeyCalculator)
	if err != nil {
		return nil, fmt.Errorf("no calculator in this scenario (add \"Given I have a calculator\"): %w", err)
	}
	return c, nil
}

func add(sc *steps.Context, a, b float64) error {
	c, err := calc(sc)
	if err != nil {
		return err
	}
	setResult(sc, c.Add(a, b))
	return nil
}

// subtract reads "I subtract a from b", so it computes b - a.
func subtract(sc *steps.Context, a, b float64) error {
	c, err := calc(sc)
	if err != nil {
		return err
	}
	setResult(sc, c.Subtract(b, a))
	return nil
}

func multiply(sc *steps.Context, a, b float64) error {
	c, err := calc(sc)
	if err != nil {
		return err
	}
	setResult(sc, c.Multiply(a, b))
	return nil
}

// divide records a division error instead of failing the step, so the
// scenario can assert on it.
func divide(sc *steps.Context, a, b float64) error {
	c, err := calc(sc)
	if err != nil {
		return err
	}
	res, err := c.Divide(a, b)
	if err != nil {
		sc.Set(KeyError, err)
		return nil
	}
	setResult(sc, res)
	return nil
}

// setResult records a successful operation, clearing any earlier failure.
func setResult(sc *steps.Context, v float64) {
	sc.Delete(KeyError)
	sc.Set(KeyResult, v)
}

func addTable(sc *steps.Context, table *steps.Table) error {
	c, err := calc(sc)
	if err != nil {
		return err
	}
	column, err := table.Column("number")
	if err != nil {
		return err
	}
	values := make([]float64, len(column))
	for i, cell := range column {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return fmt.Errorf("row %d: %q is not a number", i+1, cell)
		}
		values[i] = v
	}
	setResult(sc, c.Sum(values...))
	return nil
}

func resultShouldBe(sc *steps.Context, want float64) error {
	got, err := sc.Float(KeyResult)
	if err != nil {
		return err
	}
	return assert.InDelta(want, got, resultTolerance*math.Max(1, math.Abs(want)), "result")
}

func shouldFailWith(sc *steps.Context, message string) error {
	v, _ := sc.Get(KeyError)
	err, _ := v.(error)
	return assert.ErrorContains(err, message)
}

func shouldSucceed(sc *steps.Context) error {
	if v, ok := sc.Get(KeyError); ok {
		return fmt.Errorf("operation failed: %v", v)
	}
	return nil
}

func haveConverter(sc *steps.Context) {
	sc.Set(KeyConverter, calculator.NewConverter())
}

func conv(sc *steps.Context) (*calculator.Converter, error) {
	c, err := steps.Lookup[*calculator.Converter](sc, KeyConverter)
	if err != nil {
		return nil, fmt.Errorf("no converter in this scenario (add \"Given I have a temperature converter\"): %w", err)
	}
	return c, nil
}

func convert(sc *steps.Context, value float64, from, to string) error {
	c, err := conv(sc)
	if err != nil {
		return err
	}
	fromScale, err := calculator.ParseScale(from)
	if err != nil {
		return err
	}
	toScale, err := calculator.ParseScale(to)
	if err != nil {
		return err
	}

	res, err := c.Convert(value, fromScale, toScale)
	if err != nil {
		return err
	}
	sc.Set(KeyResult, res)
	sc.Set(KeyScale, toScale)
	return nil
}

func convertBack(sc *steps.Context, to string) error {
	c, err := conv(sc)
	if err != nil {
		return err
	}
	value, scale := c.Last()
	if scale == "" {
		return fmt.Errorf("nothing has been converted yet")
	}
	return convert(sc, value, string(scale), to)
}

func convertTable(sc *steps.Context, table *steps.Table) error {
	records, err := table.Records()
	if err != nil {
		return err
	}
	for i, rec := range records {
		value, err := strconv.ParseFloat(rec["value"], 64)
		if err != nil {
			return fmt.Errorf("row %d: value %q is not a number", i+1, rec["value"])
		}
		expected, err := strconv.ParseFloat(rec["expected"], 64)
		if err != nil {
			return fmt.Errorf("row %d: expected %q is not a number", i+1, rec["expected"])
		}
		if err := convert(sc, value, rec["from"], rec["to"]); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := temperatureShouldBe(sc, expected, rec["to"]); err != nil {
			return fmt.Errorf("row %d (%s %s to %s): %w", i+1, rec["value"], rec["from"], rec["to"], err)
		}
	}
	return nil
}

func temperatureShouldBe(sc *steps.Context, want float64, scale string) error {
	wantScale, err := calculator.ParseScale(scale)
	if err != nil {
		return err
	}
	gotScale, err := steps.Lookup[calculator.Scale](sc, KeyScale)
	if err != nil {
		return err
	}
	if err := assert.Equal(wantScale, gotScale, "scale"); err != nil {
		return err
	}

	got, err := sc.Float(KeyResult)
	if err != nil {
		return err
	}
	return assert.InDelta(want, got, temperatureTolerance, "temperature")
}

func expressionHolds(sc *steps.Context, expression string) error {
	return evaluator.Evaluate(expression, sc.Values()).Err()
}
