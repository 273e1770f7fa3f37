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

package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	assert.Equal(t, 8.0, Add(5, 3), "5 + 3 should equal 8")
	assert.Equal(t, 7.0, Subtract(10, 3), "10 - 3 should equal 7")
	assert.Equal(t, 24.0, Multiply(4, 6), "4 * 6 should equal 24")

	got, err := Divide(10, 4)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
}

func TestArithmeticMatchesNativeOperators(t *testing.T) {
	values := []float64{0, 1, -1, 3, -7.5, 1e9, -1e-9, math.MaxInt32, 0.1}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, a+b, Add(a, b))
			assert.Equal(t, a-b, Subtract(a, b))
			assert.Equal(t, a*b, Multiply(a, b))
		}
	}
}

func TestDivideByZero(t *testing.T) {
	for _, a := range []float64{0, 1, -1, 42, math.Inf(1)} {
		_, err := Divide(a, 0)
		assert.ErrorIs(t, err, ErrDivisionByZero, "divide(%v, 0) should fail", a)
	}
}

func TestCalculatorLastResult(t *testing.T) {
	c := New()
	assert.Equal(t, 0.0, c.Last())

	c.Add(5, 3)
	assert.Equal(t, 8.0, c.Last())

	c.Multiply(4, 6)
	assert.Equal(t, 24.0, c.Last(), "last result reflects the most recent operation")

	_, err := c.Divide(1, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, 24.0, c.Last(), "failed division leaves last result untouched")

	assert.Equal(t, 10.0, c.Sum(1, 2, 3, 4))
	assert.Equal(t, 10.0, c.Last())
}
