package ir_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calyx-zk/calyx/lang/field"
	"github.com/calyx-zk/calyx/lang/ir"
)

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if grow := b.pos + len(p) - len(b.buf); grow > 0 {
		b.buf = append(b.buf, make([]byte, grow)...)
	}
	copy(b.buf[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = int(offset)
	case io.SeekCurrent:
		b.pos += int(offset)
	case io.SeekEnd:
		b.pos = len(b.buf) + int(offset)
	}
	return int64(b.pos), nil
}

func serialize(t *testing.T, p *ir.Prog) ([]byte, int) {
	t.Helper()

	var buf seekBuffer
	count, err := p.Iterator().Serialize(&buf)
	require.NoError(t, err)
	return buf.buf, count
}

func deserialize(t *testing.T, b []byte) *ir.Prog {
	t.Helper()

	pi, err := ir.Deserialize(bytes.NewReader(b))
	require.NoError(t, err)
	return pi.Collect()
}

func TestSerializeRoundTripEmpty(t *testing.T) {
	p := &ir.Prog{Curve: field.Bn128}

	b, count := serialize(t, p)
	require.Equal(t, 0, count)

	got := deserialize(t, b)
	require.Equal(t, "bn128", got.Curve.Name())
	require.Empty(t, got.Arguments)
	require.Zero(t, got.ReturnCount)
	require.Empty(t, got.Statements)
	require.Empty(t, got.Solvers)
}

func TestSerializeRoundTripIdentity(t *testing.T) {
	// private(var 0) is returned as the single public output
	p := &ir.Prog{
		Curve:       field.Bls12_381,
		Arguments:   []ir.Parameter{{Variable: 0, Private: true}},
		ReturnCount: 1,
		Statements: []ir.Statement{
			constraint(field.Bls12_381, 0, ir.Public(0)),
		},
	}

	b, count := serialize(t, p)
	require.Equal(t, 1, count)

	got := deserialize(t, b)
	require.Equal(t, "bls12-381", got.Curve.Name())
	require.Equal(t, p.Arguments, got.Arguments)
	require.Equal(t, p.ReturnCount, got.ReturnCount)
	require.Equal(t, p.Statements, got.Statements)
	require.Empty(t, got.Solvers)
}

func TestSerializeRoundTripAllCurves(t *testing.T) {
	for _, c := range field.Curves() {
		t.Run(c.Name(), func(t *testing.T) {
			p := &ir.Prog{
				Curve:       c,
				Arguments:   []ir.Parameter{{Variable: 1, Private: false}},
				ReturnCount: 1,
				Statements: []ir.Statement{
					&ir.Constraint{
						Left:  ir.LinComb{{Variable: 1, Coefficient: c.FromUint64(42)}},
						Right: ir.LinCombOf(c, ir.Public(0)),
					},
				},
			}

			b, count := serialize(t, p)
			require.Equal(t, 1, count)

			got := deserialize(t, b)
			require.Equal(t, c.Name(), got.Curve.Name())
			require.Equal(t, p.Statements, got.Statements)
		})
	}
}

func TestSerializeIndexesSolvers(t *testing.T) {
	div := ir.Solver{Name: "div", InCount: 2, OutCount: 1}
	p := &ir.Prog{
		Curve:       field.Bn128,
		ReturnCount: 2,
		Statements: []ir.Statement{
			directive(bitsSolver, ir.Public(0)),
			directive(div, ir.Public(1)),
			&ir.Directive{
				Inputs:  []ir.LinComb{ir.LinCombOf(field.Bn128, ir.Public(0))},
				Solver:  ir.RefOf(bitsSolver),
				Outputs: []ir.Variable{ir.Public(0)},
			},
		},
	}

	b, count := serialize(t, p)
	require.Equal(t, 0, count)

	got := deserialize(t, b)
	require.Equal(t, []ir.Solver{bitsSolver, div}, got.Solvers)

	require.Len(t, got.Statements, 3)
	require.Equal(t, ir.RefAt(0), got.Statements[0].(*ir.Directive).Solver)
	require.Equal(t, ir.RefAt(1), got.Statements[1].(*ir.Directive).Solver)
	require.Equal(t, ir.RefAt(0), got.Statements[2].(*ir.Directive).Solver)
}

func TestSerializeUnconstrained(t *testing.T) {
	cases := []struct {
		desc string
		prog *ir.Prog
		err  string
	}{
		{"unconstrained argument", &ir.Prog{
			Curve:     field.Bn128,
			Arguments: []ir.Parameter{{Variable: 1, Private: true}},
		}, "Error: Found 1 unconstrained variable(s)"},
		{"unconstrained argument and outputs", &ir.Prog{
			Curve:       field.Bn128,
			Arguments:   []ir.Parameter{{Variable: 1, Private: true}},
			ReturnCount: 2,
		}, "Error: Found 3 unconstrained variable(s)"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			var buf seekBuffer
			_, err := c.prog.Iterator().Serialize(&buf)
			require.EqualError(t, err, c.err)
		})
	}
}

func TestDeserializeRejectsBadHeaders(t *testing.T) {
	magic := []byte{0x5a, 0x4f, 0x4b, 0x00}
	version := []byte{0, 0, 0, 3}

	valid, _ := serialize(t, &ir.Prog{Curve: field.Bn128})

	cases := []struct {
		desc string
		in   []byte
		err  string
	}{
		{"empty input", nil, "Cannot read magic number"},
		{"bad magic", make([]byte, 32), "Wrong magic number"},
		{"truncated after magic", magic, "Cannot read version"},
		{"unknown version", append(append([]byte{}, magic...), 0, 0, 0, 2), "Unknown version"},
		{"truncated after version", append(append([]byte{}, magic...), version...), "Cannot read curve identifier"},
		{"unknown curve", append(append(append([]byte{}, magic...), version...), 'z', 'z', 'z', 'z'), "Unknown curve identifier"},
		{"truncated offset", append(append(append([]byte{}, magic...), version...), valid[8:12]...), "Cannot read solver list offset"},
		{"truncated parameters", valid[:20], "Cannot read parameters"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := ir.Deserialize(bytes.NewReader(c.in))
			require.EqualError(t, err, c.err)
		})
	}
}

func TestStatementStreamEndsAtSolverTable(t *testing.T) {
	// the stream has no length prefix: the iterator ends silently at the
	// first record that does not decode as a statement, here the solver
	// table
	p := &ir.Prog{
		Curve:       field.Bn128,
		Arguments:   []ir.Parameter{{Variable: 1, Private: true}},
		ReturnCount: 1,
		Statements: []ir.Statement{
			constraint(field.Bn128, 1, ir.Public(0)),
			constraint(field.Bn128, 1, ir.Public(0)),
		},
	}
	b, _ := serialize(t, p)

	pi, err := ir.Deserialize(bytes.NewReader(b))
	require.NoError(t, err)

	var n int
	for {
		if _, ok := pi.Statements.Next(); !ok {
			break
		}
		n++
	}
	require.Equal(t, 2, n)

	// the iterator stays exhausted
	_, ok := pi.Statements.Next()
	require.False(t, ok)
}

func TestSerializeHeaderLayout(t *testing.T) {
	b, _ := serialize(t, &ir.Prog{Curve: field.Bls12_377})

	require.Equal(t, []byte{0x5a, 0x4f, 0x4b, 0x00}, b[0:4], "magic")
	require.Equal(t, []byte{0, 0, 0, 3}, b[4:8], "version")
	id := field.Bls12_377.ID()
	require.Equal(t, id[:], b[8:12], "curve id")

	// the offset slot points at the solver table, an empty CBOR array here
	offset := binary.LittleEndian.Uint64(b[12:20])
	require.Equal(t, byte(0x80), b[offset])
	require.Equal(t, int(offset), len(b)-1)
}

func TestCurveIDsAreUnique(t *testing.T) {
	seen := make(map[[4]byte]string)
	for _, c := range field.Curves() {
		id := c.ID()
		if prev, ok := seen[id]; ok {
			t.Fatalf("curves %s and %s share id %v", prev, c.Name(), id)
		}
		seen[id] = c.Name()

		got, ok := field.ByID(id)
		require.True(t, ok)
		require.Equal(t, c.Name(), got.Name())
	}
}
