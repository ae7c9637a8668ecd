package model

// Parameter is a data structure that represents a single deck entry
// in API responses. Value is int64, float64 or string depending on
// what the parameter text coerced to.
type Parameter struct {
	Name  string      `json:"name" yaml:"name"`
	Value interface{} `json:"value" yaml:"value"`
	Kind  string      `json:"kind" yaml:"kind"`
}
