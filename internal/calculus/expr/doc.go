// Package expr compiles user-typed scalar expressions of (x, y[, t]) into
// safe numeric functions.
//
// The front end is a small hand-written tokenizer and Pratt parser that
// produces an AST; the AST is then compiled into a tree of closures. No text
// is ever executed as code.
//
// Grammar:
//   - Numbers: 3, 0.5, .5, 1e-3
//   - Variables: x, y and (arity 3) t
//   - Constants: pi, tau, e
//   - Functions: sin cos tan asin acos atan atan2 sqrt abs pow exp log ln
//     min max floor ceil round trunc sinh cosh tanh hypot sign
//   - Operators: + - * / and ^ (exponentiation, ** is accepted as a synonym)
//
// Function and constant names are case-insensitive and may carry an explicit
// "Math." qualifier (Math.sin, Math.PI). Variables are case-sensitive.
//
// Precedence, lowest first:
//
//	+ -        left associative
//	* /        left associative
//	unary + -  prefix
//	^          right associative, binds tighter than unary minus (-2^2 = -4)
//
// Compiled functions are total: any failure, whether a syntax error, an
// unknown identifier, a wrong argument count or a non-finite intermediate
// value, yields NaN, the package-wide "undefined" sentinel.
//
// Example Usage:
//
//	f := expr.Compile("sin(sqrt(x^2 + y^2) - 3*t)", expr.XYT)
//	z := f(1, 2, 0.5)
//	if math.IsNaN(z) {
//		// undefined at this sample
//	}
package expr
