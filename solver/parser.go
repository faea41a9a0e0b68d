package solver

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DIMACS parsing, extended with "x" lines for XOR constraints and with the
// library-debug comment markers of the original file format.

const (
	solveMarker  = "Solver::solve()"
	newVarMarker = "Solver::newVar()"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads an int from r. 'b' is the last read byte. It can be a
// space, a '-' or a digit. All spaces before the int value are ignored.
// Can return EOF.
func readInt(b *byte, r *bufio.Reader) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, errors.Wrap(err, "could not read digit")
	}
	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
	}
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, errors.Errorf("cannot read int: %q is not a digit", *b)
		}
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
		if isSpace(*b) {
			break
		}
	}
	res *= neg
	return res, err
}

func parseHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "cannot read header")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Errorf("nbvars not an int: %q", fields[1])
	}
	nbClauses, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, errors.Errorf("nbclauses not an int: %q", fields[2])
	}
	return nbVars, nbClauses, nil
}

// ParseCNF parses a DIMACS CNF stream, possibly containing "x" XOR lines,
// and returns the corresponding Problem. It can be called several times
// with the same Problem via ParseCNFInto, e.g. to also read a dumped
// learnt-clause file.
func ParseCNF(f io.Reader) (*Problem, error) {
	var pb Problem
	if err := ParseCNFInto(f, &pb); err != nil {
		return nil, err
	}
	return &pb, nil
}

// ParseCNFInto parses a DIMACS stream into an existing problem.
func ParseCNFInto(f io.Reader, pb *Problem) error {
	r := bufio.NewReader(f)
	b, err := r.ReadByte()
	for err == nil {
		switch {
		case isSpace(b):
		case b == 'c': // Comment, possibly a library-debug marker.
			line, err2 := r.ReadString('\n')
			if err2 != nil && err2 != io.EOF {
				return err2
			}
			if strings.Contains(line, solveMarker) {
				pb.SolvePoints = append(pb.SolvePoints, SolvePoint{
					NbClauses: len(pb.Clauses),
					NbXors:    len(pb.Xors),
					NbUnits:   len(pb.Units),
				})
			} else if strings.Contains(line, newVarMarker) {
				pb.NbVars++
			}
		case b == 'p': // Header.
			var nbClauses int
			pb.NbVars, nbClauses, err = parseHeader(r)
			if err != nil {
				return errors.Wrap(err, "cannot parse CNF header")
			}
			if cap(pb.Clauses) == 0 {
				pb.Clauses = make([][]Lit, 0, nbClauses)
			}
		case b == 'x': // XOR constraint.
			b, err = r.ReadByte()
			rhs := true
			var vars []Var
			for {
				val, err2 := readInt(&b, r)
				if err2 != nil && err2 != io.EOF {
					return errors.Wrap(err2, "cannot parse xor clause")
				}
				if val == 0 {
					if err2 == io.EOF && len(vars) == 0 {
						return errors.New("unfinished xor clause while EOF found")
					}
					pb.addXor(vars, rhs)
					break
				}
				if val < 0 {
					rhs = !rhs
					val = -val
				}
				if val > pb.NbVars {
					return errors.Errorf("invalid variable %d for problem with %d vars only", val, pb.NbVars)
				}
				vars = append(vars, IntToVar(int32(val)))
				if err2 == io.EOF {
					return errors.New("unfinished xor clause while EOF found")
				}
			}
			err = nil
			continue
		default:
			lits := make([]Lit, 0, 3)
			done := false
			for !done {
				val, err2 := readInt(&b, r)
				if err2 == io.EOF && val == 0 && len(lits) == 0 {
					// Trailing whitespace at the end of the file.
					return nil
				}
				if err2 != nil && err2 != io.EOF {
					return errors.Wrap(err2, "cannot parse clause")
				}
				if val == 0 {
					pb.addClause(lits)
					done = true
				} else {
					if val > pb.NbVars || -val > pb.NbVars {
						return errors.Errorf("invalid literal %d for problem with %d vars only", val, pb.NbVars)
					}
					lits = append(lits, IntToLit(int32(val)))
				}
				if err2 == io.EOF {
					if !done {
						return errors.New("unfinished clause while EOF found")
					}
					return nil
				}
			}
			err = nil
			continue
		}
		b, err = r.ReadByte()
	}
	if err != io.EOF {
		return err
	}
	return nil
}

// ParseCNFFile opens and parses a DIMACS file, transparently decompressing
// gzip input.
func ParseCNFFile(path string) (*Problem, error) {
	var pb Problem
	if err := ParseCNFFileInto(path, &pb); err != nil {
		return nil, err
	}
	return &pb, nil
}

// ParseCNFFileInto opens and parses a DIMACS file into an existing problem.
func ParseCNFFileInto(path string, pb *Problem) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "could not open %q", path)
	}
	defer func() { _ = f.Close() }()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "could not read gzip header of %q", path)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	if err := ParseCNFInto(r, pb); err != nil {
		return errors.Wrapf(err, "could not parse %q", path)
	}
	return nil
}
