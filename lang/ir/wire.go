package ir

import (
	"errors"
	"fmt"

	"github.com/calyx-zk/calyx/lang/field"
)

// Wire forms of the IR records: self-describing CBOR maps with string keys.
// Field elements travel as their canonical big-endian bytes for the curve
// of the enclosing program.

type wireParameter struct {
	ID      int64 `cbor:"id"`
	Private bool  `cbor:"private"`
}

type wireTerm struct {
	Var   int64  `cbor:"var"`
	Coeff []byte `cbor:"coeff"`
}

type wireLinComb []wireTerm

type wireSolver struct {
	Name string `cbor:"name"`
	In   uint32 `cbor:"in"`
	Out  uint32 `cbor:"out"`
}

// Statement variant tags.
const (
	kindConstraint = "constraint"
	kindDirective  = "directive"
	kindBlock      = "block"
)

type wireStatement struct {
	Kind    string          `cbor:"kind"`
	Left    wireLinComb     `cbor:"left,omitempty"`
	Right   wireLinComb     `cbor:"right,omitempty"`
	Inputs  []wireLinComb   `cbor:"inputs,omitempty"`
	Solver  uint32          `cbor:"solver,omitempty"`
	Outputs []int64         `cbor:"outputs,omitempty"`
	Inner   []wireStatement `cbor:"inner,omitempty"`
}

func encodeParameters(params []Parameter) []wireParameter {
	res := make([]wireParameter, len(params))
	for i, p := range params {
		res[i] = wireParameter{ID: int64(p.Variable), Private: p.Private}
	}
	return res
}

func decodeParameters(wps []wireParameter) []Parameter {
	res := make([]Parameter, len(wps))
	for i, wp := range wps {
		res[i] = Parameter{Variable: Variable(wp.ID), Private: wp.Private}
	}
	return res
}

func encodeSolvers(solvers []Solver) []wireSolver {
	res := make([]wireSolver, len(solvers))
	for i, s := range solvers {
		res[i] = wireSolver{Name: s.Name, In: s.InCount, Out: s.OutCount}
	}
	return res
}

func decodeSolvers(wss []wireSolver) []Solver {
	res := make([]Solver, len(wss))
	for i, ws := range wss {
		res[i] = Solver{Name: ws.Name, InCount: ws.In, OutCount: ws.Out}
	}
	return res
}

func encodeLinComb(lc LinComb) wireLinComb {
	res := make(wireLinComb, len(lc))
	for i, t := range lc {
		res[i] = wireTerm{Var: int64(t.Variable), Coeff: t.Coefficient.Bytes()}
	}
	return res
}

func decodeLinComb(wlc wireLinComb, curve field.Curve) (LinComb, error) {
	res := make(LinComb, len(wlc))
	for i, wt := range wlc {
		coeff, err := curve.FromBytes(wt.Coeff)
		if err != nil {
			return nil, err
		}
		res[i] = Term{Variable: Variable(wt.Var), Coefficient: coeff}
	}
	return res, nil
}

func encodeStatement(s Statement) (wireStatement, error) {
	switch s := s.(type) {
	case *Constraint:
		return wireStatement{
			Kind:  kindConstraint,
			Left:  encodeLinComb(s.Left),
			Right: encodeLinComb(s.Right),
		}, nil
	case *Directive:
		if s.Solver.Inline != nil {
			return wireStatement{}, errors.New("cannot serialize an inline solver reference")
		}
		inputs := make([]wireLinComb, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = encodeLinComb(in)
		}
		outputs := make([]int64, len(s.Outputs))
		for i, o := range s.Outputs {
			outputs[i] = int64(o)
		}
		return wireStatement{
			Kind:    kindDirective,
			Inputs:  inputs,
			Solver:  s.Solver.Index,
			Outputs: outputs,
		}, nil
	case *Block:
		inner := make([]wireStatement, len(s.Inner))
		for i, is := range s.Inner {
			ws, err := encodeStatement(is)
			if err != nil {
				return wireStatement{}, err
			}
			inner[i] = ws
		}
		return wireStatement{Kind: kindBlock, Inner: inner}, nil
	default:
		panic(fmt.Sprintf("unexpected statement %T", s))
	}
}

func decodeStatement(ws wireStatement, curve field.Curve) (Statement, error) {
	switch ws.Kind {
	case kindConstraint:
		left, err := decodeLinComb(ws.Left, curve)
		if err != nil {
			return nil, err
		}
		right, err := decodeLinComb(ws.Right, curve)
		if err != nil {
			return nil, err
		}
		return &Constraint{Left: left, Right: right}, nil
	case kindDirective:
		inputs := make([]LinComb, len(ws.Inputs))
		for i, in := range ws.Inputs {
			lc, err := decodeLinComb(in, curve)
			if err != nil {
				return nil, err
			}
			inputs[i] = lc
		}
		outputs := make([]Variable, len(ws.Outputs))
		for i, o := range ws.Outputs {
			outputs[i] = Variable(o)
		}
		return &Directive{Inputs: inputs, Solver: RefAt(ws.Solver), Outputs: outputs}, nil
	case kindBlock:
		inner := make([]Statement, len(ws.Inner))
		for i, iws := range ws.Inner {
			is, err := decodeStatement(iws, curve)
			if err != nil {
				return nil, err
			}
			inner[i] = is
		}
		return &Block{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind: %s", ws.Kind)
	}
}
