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

// Package calculator is the example system under test: basic arithmetic and
// temperature conversion. Every operation is a pure function of its inputs;
// the Calculator and Converter types only remember their last result.
package calculator

import "errors"

// ErrDivisionByZero is returned by Divide when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Add returns a + b.
func Add(a, b float64) float64 { return a + b }

// Subtract returns a - b.
func Subtract(a, b float64) float64 { return a - b }

// Multiply returns a * b.
func Multiply(a, b float64) float64 { return a * b }

// Divide returns a / b, or ErrDivisionByZero when b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Calculator wraps the arithmetic functions and keeps the most recent
// successful result.
type Calculator struct {
	last float64
}

// New returns a calculator whose last result is zero.
func New() *Calculator {
	return &Calculator{}
}

// Add computes a + b and records it as the last result.
func (c *Calculator) Add(a, b float64) float64 {
	c.last = Add(a, b)
	return c.last
}

// Subtract computes a - b and records it as the last result.
func (c *Calculator) Subtract(a, b float64) float64 {
	c.last = Subtract(a, b)
	return c.last
}

// Multiply computes a * b and records it as the last result.
func (c *Calculator) Multiply(a, b float64) float64 {
	c.last = Multiply(a, b)
	return c.last
}

// Divide computes a / b. On failure the last result is left unchanged.
func (c *Calculator) Divide(a, b float64) (float64, error) {
	res, err := Divide(a, b)
	if err != nil {
		return 0, err
	}
	c.last = res
	return res, nil
}

// Sum adds all values, recording the total as the last result.
func (c *Calculator) Sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total = Add(total, v)
	}
	c.last = total
	return total
}

// Last returns the result of the most recent successful operation.
func (c *Calculator) Last() float64 {
	return c.last
}
