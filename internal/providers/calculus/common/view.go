package common

import "math"

// Num returns v, or nil when v is NaN or infinite.
func Num(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// Nums applies Num element-wise.
func Nums(vs []float64) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = Num(v)
	}
	return out
}

// XYZ encodes a point.
func XYZ(x, y, z float64) map[string]interface{} {
	return map[string]interface{}{"x": Num(x), "y": Num(y), "z": Num(z)}
}
