package expr

import (
	"math"
	"slices"
	"strings"
)

// variadic marks a builtin that accepts any number of arguments.
const variadic = -1

type builtin struct {
	name  string
	arity int
	fn1   func(float64) float64
	fn2   func(a, b float64) float64
	fnN   func(args []float64) float64
}

var constants = map[string]float64{
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
	"e":   math.E,
}

var builtins = map[string]builtin{
	"sin":   {name: "sin", arity: 1, fn1: math.Sin},
	"cos":   {name: "cos", arity: 1, fn1: math.Cos},
	"tan":   {name: "tan", arity: 1, fn1: math.Tan},
	"asin":  {name: "asin", arity: 1, fn1: math.Asin},
	"acos":  {name: "acos", arity: 1, fn1: math.Acos},
	"atan":  {name: "atan", arity: 1, fn1: math.Atan},
	"atan2": {name: "atan2", arity: 2, fn2: math.Atan2},
	"sqrt":  {name: "sqrt", arity: 1, fn1: math.Sqrt},
	"abs":   {name: "abs", arity: 1, fn1: math.Abs},
	"pow":   {name: "pow", arity: 2, fn2: math.Pow},
	"exp":   {name: "exp", arity: 1, fn1: math.Exp},
	"log":   {name: "log", arity: 1, fn1: math.Log},
	"ln":    {name: "ln", arity: 1, fn1: math.Log},
	"min":   {name: "min", arity: variadic, fnN: minOf},
	"max":   {name: "max", arity: variadic, fnN: maxOf},
	"floor": {name: "floor", arity: 1, fn1: math.Floor},
	"ceil":  {name: "ceil", arity: 1, fn1: math.Ceil},
	"round": {name: "round", arity: 1, fn1: roundHalfUp},
	"trunc": {name: "trunc", arity: 1, fn1: math.Trunc},
	"sinh":  {name: "sinh", arity: 1, fn1: math.Sinh},
	"cosh":  {name: "cosh", arity: 1, fn1: math.Cosh},
	"tanh":  {name: "tanh", arity: 1, fn1: math.Tanh},
	"hypot": {name: "hypot", arity: variadic, fnN: hypotOf},
	"sign":  {name: "sign", arity: 1, fn1: sign},
}

// lookupName resolves a possibly qualified name ("Math.sin", "SIN") against
// the whitelist. Qualification is optional and case-insensitive.
func lookupName(name string) string {
	lower := strings.ToLower(name)
	return strings.TrimPrefix(lower, "math.")
}

// Functions returns the whitelisted function names, sorted.
func Functions() []string {
	return sortedKeys(builtins)
}

// Constants returns the whitelisted constant names, sorted.
func Constants() []string {
	return sortedKeys(constants)
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// roundHalfUp rounds to the nearest integer with ties going toward +Inf,
// so round(-2.5) is -2 and round(2.5) is 3.
func roundHalfUp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f := math.Floor(v)
	if v-f >= 0.5 {
		return f + 1
	}
	return f
}

func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return math.NaN()
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func minOf(args []float64) float64 {
	if len(args) == 0 {
		return math.NaN()
	}
	m := args[0]
	for _, v := range args[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(args []float64) float64 {
	if len(args) == 0 {
		return math.NaN()
	}
	m := args[0]
	for _, v := range args[1:] {
		m = math.Max(m, v)
	}
	return m
}

func hypotOf(args []float64) float64 {
	h := 0.0
	for _, v := range args {
		h = math.Hypot(h, v)
	}
	return h
}
