package attr_test

import "github.com/plus3/nodeattr/attr"

// Common attribute value types
type Point struct {
	X, Y float64
}

type Color int

type Label string

type Tags struct {
	Items []string
}

func newTestRegistry() *attr.Registry {
	return attr.NewRegistry()
}
