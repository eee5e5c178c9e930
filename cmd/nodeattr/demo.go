package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/plus3/nodeattr/attr"
	"github.com/plus3/nodeattr/graph"
	"github.com/spf13/cobra"
)

type Point struct {
	X float64
	Y float64
}

// `nodeattr demo` command
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Runs the coordinates walkthrough",
		Long:  "Attaches, writes, iterates and detaches node attributes on a small graph and prints what happens.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

func runDemo(w io.Writer) error {
	g := graph.New()
	defer g.Close()
	g.AddNodes(30)
	nodeAttrs := g.NodeAttributes()

	colors, err := attr.Attach[int](nodeAttrs, "color")
	if err != nil {
		return err
	}
	coords, err := attr.Attach[Point](nodeAttrs, "Coordinates")
	if err != nil {
		return err
	}
	coords2, err := attr.Get[Point](nodeAttrs, "Coordinates")
	if err != nil {
		return err
	}

	p := Point{X: 41, Y: 42}
	if _, err := coords.Assign(p, 21, 25); err != nil {
		return err
	}
	if err := coords.Set(22, p); err != nil {
		return err
	}

	p22, err := coords.At(22).Read()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "coords[22].x = %g\n", p22.X)
	fmt.Fprintf(w, "coords[22].y = %g\n", p22.Y)

	if x, ok, err := coords.Get(23); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(w, "%g\n", x.X)
	} else {
		fmt.Fprintln(w, "no value")
	}

	all, err := coords.All()
	if err != nil {
		return err
	}
	for i, c := range all {
		fmt.Fprintf(w, "%d: x = %g\t y = %g\n", i, c.X, c.Y)
	}

	if err := nodeAttrs.Detach("Coordinates"); err != nil {
		return err
	}

	c1, err := attr.Attach[float64](nodeAttrs, "Coordinates")
	if err != nil {
		return err
	}
	if _, err := c1.At(0).Write(333.33); err != nil {
		return err
	}
	v, err := c1.At(0).Read()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, v)

	if _, err := coords2.At(0).Read(); errors.Is(err, attr.ErrAttributeInvalid) {
		fmt.Fprintln(w, err)
	}

	if _, err := colors.At(0).Write(33); err != nil {
		return err
	}
	c, err := colors.At(0).Read()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, c)

	values, err := c1.Values()
	if err != nil {
		return err
	}
	for v := range values {
		fmt.Fprintln(w, v)
	}

	for _, name := range nodeAttrs.Enumerate() {
		fmt.Fprintln(w, name)
	}
	return nil
}
