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
	"fmt"
	"strings"
)

// Scale is a temperature scale.
type Scale string

const (
	Celsius    Scale = "Celsius"
	Fahrenheit Scale = "Fahrenheit"
	Kelvin     Scale = "Kelvin"
)

// AbsoluteZeroCelsius is 0K expressed in degrees Celsius.
const AbsoluteZeroCelsius = -273.15

// ParseScale accepts a scale name or symbol, case-insensitive:
// "Celsius", "C", "°C", "Fahrenheit", "F", "Kelvin", "K".
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "°")) {
	case "celsius", "c", "centigrade":
		return Celsius, nil
	case "fahrenheit", "f":
		return Fahrenheit, nil
	case "kelvin", "k":
		return Kelvin, nil
	}
	return "", fmt.Errorf("unknown temperature scale %q", s)
}

// CelsiusToFahrenheit converts using F = C*9/5 + 32.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// FahrenheitToCelsius converts using C = (F-32)*5/9.
func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

// CelsiusToKelvin converts using K = C + 273.15.
func CelsiusToKelvin(c float64) float64 { return c - AbsoluteZeroCelsius }

// KelvinToCelsius converts using C = K - 273.15.
func KelvinToCelsius(k float64) float64 { return k + AbsoluteZeroCelsius }

// FahrenheitToKelvin converts through Celsius.
func FahrenheitToKelvin(f float64) float64 { return CelsiusToKelvin(FahrenheitToCelsius(f)) }

// KelvinToFahrenheit converts through Celsius.
func KelvinToFahrenheit(k float64) float64 { return CelsiusToFahrenheit(KelvinToCelsius(k)) }

// Convert converts value from one scale to another.
func Convert(value float64, from, to Scale) (float64, error) {
	if from == to {
		return value, nil
	}
	switch from {
	case Celsius:
		switch to {
		case Fahrenheit:
			return CelsiusToFahrenheit(value), nil
		case Kelvin:
			return CelsiusToKelvin(value), nil
		}
	case Fahrenheit:
		switch to {
		case Celsius:
			return FahrenheitToCelsius(value), nil
		case Kelvin:
			return FahrenheitToKelvin(value), nil
		}
	case Kelvin:
		switch to {
		case Celsius:
			return KelvinToCelsius(value), nil
		case Fahrenheit:
			return KelvinToFahrenheit(value), nil
		}
	}
	return 0, fmt.Errorf("cannot convert %s to %s", from, to)
}

// Converter converts temperatures and remembers the last conversion.
type Converter struct {
	last  float64
	scale Scale
}

// NewConverter returns an empty converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert converts value and records the result together with its scale.
func (c *Converter) Convert(value float64, from, to Scale) (float64, error) {
	res, err := Convert(value, from, to)
	if err != nil {
		return 0, err
	}
	c.last, c.scale = res, to
	return res, nil
}

// Last returns the most recent conversion result and its scale.
func (c *Converter) Last() (float64, Scale) {
	return c.last, c.scale
}
