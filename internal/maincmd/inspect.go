package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/calyx-zk/calyx/lang/ir"
)

// Inspect reads each serialized program and prints its header, statement
// counts and solver table.
func (c *Cmd) Inspect(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return printError(stdio, err)
		}
		if err := c.inspectFile(stdio, path); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

func (c *Cmd) inspectFile(stdio mainer.Stdio, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pi, err := ir.Deserialize(f)
	if err != nil {
		return fmt.Errorf("%s: %s", path, err)
	}

	fmt.Fprintf(stdio.Stdout, "%s:\n", path)
	fmt.Fprintf(stdio.Stdout, "\tcurve:\t%s\n", pi.Curve.Name())
	fmt.Fprintf(stdio.Stdout, "\targuments:\t%d\n", len(pi.Arguments))
	for _, p := range pi.Arguments {
		fmt.Fprintf(stdio.Stdout, "\t\t%s\n", p)
	}
	fmt.Fprintf(stdio.Stdout, "\treturns:\t%d\n", pi.ReturnCount)

	var constraints, directives, others int
	for {
		s, ok := pi.Statements.Next()
		if !ok {
			break
		}
		switch s.(type) {
		case *ir.Constraint:
			constraints++
		case *ir.Directive:
			directives++
		default:
			others++
		}
		if c.WithStatements {
			fmt.Fprintf(stdio.Stdout, "\t\t%s\n", s)
		}
	}
	fmt.Fprintf(stdio.Stdout, "\tconstraints:\t%d\n", constraints)
	fmt.Fprintf(stdio.Stdout, "\tdirectives:\t%d\n", directives)
	if others > 0 {
		fmt.Fprintf(stdio.Stdout, "\tother statements:\t%d\n", others)
	}

	fmt.Fprintf(stdio.Stdout, "\tsolvers:\t%d\n", len(pi.Solvers))
	for i, s := range pi.Solvers {
		fmt.Fprintf(stdio.Stdout, "\t\t%s\t# %03d\n", s, i)
	}
	return nil
}

// Check validates the container header of each serialized program.
func (c *Cmd) Check(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return printError(stdio, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return printError(stdio, err)
		}
		_, derr := ir.Deserialize(f)
		f.Close()
		if derr != nil {
			return printError(stdio, fmt.Errorf("%s: %s", path, derr))
		}
		fmt.Fprintf(stdio.Stdout, "%s: ok\n", path)
	}
	return nil
}
