package ir

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/calyx-zk/calyx/lang/field"
)

// The container starts with a fixed header: a 4-byte magic, a 4-byte
// version, a 4-byte curve tag and an 8-byte little-endian absolute offset
// of the solver table, written after the statement stream by seeking back.
var (
	containerMagic   = [4]byte{0x5a, 0x4f, 0x4b, 0x00} // "ZOK\0"
	containerVersion = [4]byte{0x00, 0x00, 0x00, 0x03}
)

// headerLen is the size of the fixed header including the offset slot.
const headerLen = 4 + 4 + 4 + 8

// Serialize writes the program to w in the versioned binary container
// format and returns the number of constraints written. Directives have
// their solvers interned into the trailing solver table, and the header
// variables are checked for constraint coverage; unconstrained variables
// are a fatal error.
func (pi *ProgIterator) Serialize(w io.WriteSeeker) (int, error) {
	if _, err := w.Write(containerMagic[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(containerVersion[:]); err != nil {
		return 0, err
	}
	id := pi.Curve.ID()
	if _, err := w.Write(id[:]); err != nil {
		return 0, err
	}

	// reserve the solver table offset slot, patched at the end
	offsetSlot, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(make([]byte, 8)); err != nil {
		return 0, err
	}

	enc := cbor.NewEncoder(w)
	if err := enc.Encode(encodeParameters(pi.Arguments)); err != nil {
		return 0, err
	}
	if err := enc.Encode(uint64(pi.ReturnCount)); err != nil {
		return 0, err
	}

	detector := NewUnconstrainedVariableDetector(pi)
	indexer := NewSolverIndexer()

	// indexing runs before detection so that directive outputs reach the
	// detector in their final form
	var count int
	for {
		s, ok := pi.Statements.Next()
		if !ok {
			break
		}
		if _, isConstraint := s.(*Constraint); isConstraint {
			count++
		}
		for _, is := range indexer.FoldStatement(s) {
			for _, ds := range detector.FoldStatement(is) {
				ws, err := encodeStatement(ds)
				if err != nil {
					return 0, err
				}
				if err := enc.Encode(ws); err != nil {
					return 0, err
				}
			}
		}
	}

	solverOffset, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	if err := enc.Encode(encodeSolvers(indexer.Solvers)); err != nil {
		return 0, err
	}

	if _, err := w.Seek(offsetSlot, io.SeekStart); err != nil {
		return 0, err
	}
	var patched [8]byte
	binary.LittleEndian.PutUint64(patched[:], uint64(solverOffset))
	if _, err := w.Write(patched[:]); err != nil {
		return 0, err
	}

	if n, ok := detector.Finalize(); !ok {
		return 0, fmt.Errorf("Error: Found %d unconstrained variable(s)", n)
	}
	return count, nil
}

// Deserialize reads a program from r, validating the container header and
// dispatching on the curve tag. The returned program streams its
// statements from r, which must outlive it; the stream ends at the first
// record that fails to decode.
func Deserialize(r io.ReadSeeker) (*ProgIterator, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.New("Cannot read magic number")
	}
	if magic != containerMagic {
		return nil, errors.New("Wrong magic number")
	}

	var version [4]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, errors.New("Cannot read version")
	}
	if version != containerVersion {
		return nil, errors.New("Unknown version")
	}

	var curveID [4]byte
	if _, err := io.ReadFull(r, curveID[:]); err != nil {
		return nil, errors.New("Cannot read curve identifier")
	}
	curve, ok := field.ByID(curveID)
	if !ok {
		return nil, errors.New("Unknown curve identifier")
	}

	var offsetBuf [8]byte
	if _, err := io.ReadFull(r, offsetBuf[:]); err != nil {
		return nil, errors.New("Cannot read solver list offset")
	}
	solverOffset := binary.LittleEndian.Uint64(offsetBuf[:])

	dec := cbor.NewDecoder(r)
	var wps []wireParameter
	if err := dec.Decode(&wps); err != nil {
		return nil, errors.New("Cannot read parameters")
	}
	var returnCount uint64
	if err := dec.Decode(&returnCount); err != nil {
		return nil, errors.New("Cannot read return count")
	}

	// the decoder reads ahead of what it consumed; the statement stream
	// starts at the logical position, not the reader's
	stmtOffset := int64(headerLen) + int64(dec.NumBytesRead())

	if _, err := r.Seek(int64(solverOffset), io.SeekStart); err != nil {
		return nil, errors.New("Cannot read solver list")
	}
	var wss []wireSolver
	if err := cbor.NewDecoder(r).Decode(&wss); err != nil {
		return nil, errors.New("Cannot read solver list")
	}

	if _, err := r.Seek(stmtOffset, io.SeekStart); err != nil {
		return nil, errors.New("Cannot read solver list offset")
	}
	sdec := cbor.NewDecoder(r)

	return &ProgIterator{
		Curve:       curve,
		Arguments:   decodeParameters(wps),
		ReturnCount: int(returnCount),
		Solvers:     decodeSolvers(wss),
		Statements: StatementIteratorFunc(func() (Statement, bool) {
			var ws wireStatement
			if err := sdec.Decode(&ws); err != nil {
				return nil, false
			}
			s, err := decodeStatement(ws, curve)
			if err != nil {
				return nil, false
			}
			return s, true
		}),
	}, nil
}
