// Package common holds what every calculus op group shares: parameter
// extraction, result constructors, the compiled-expression cache and the
// JSON-safe number encoding.
//
// Undefined numbers (NaN, ±Inf) are written as nil so that they encode as
// JSON null.
//
// Example Usage:
//
//	ops := &common.CalcOps{Cache: common.NewCache(256), Limits: common.DefaultLimits()}
//	f, err := ops.Surface(params, "expression")
package common
