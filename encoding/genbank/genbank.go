// Package genbank extracts molecule topology from the LOCUS lines of a
// GenBank flat file.  Only the header fields needed to tell circular
// plasmids from linear contigs are parsed.
package genbank

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Topology is the molecule shape declared on a LOCUS line.
type Topology int

const (
	// Unknown means the LOCUS line names neither shape.
	Unknown Topology = iota
	// Linear molecule.
	Linear
	// Circular molecule.
	Circular
)

func (t Topology) String() string {
	switch t {
	case Linear:
		return "linear"
	case Circular:
		return "circular"
	}
	return "unknown"
}

// Locus is the parsed content of one LOCUS line.
type Locus struct {
	Name     string
	Length   int
	Topology Topology
}

// ReadLoci returns the LOCUS entries of r, in file order.  A LOCUS line
// without a name is an error; a missing or unparsable length is left as 0.
func ReadLoci(r io.Reader) ([]Locus, error) {
	var loci []Locus
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "LOCUS") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.Errorf("malformed LOCUS line: %q", line)
		}
		loc := Locus{Name: fields[1]}
		for i, f := range fields[2:] {
			switch strings.ToLower(f) {
			case "bp", "aa":
				if n, err := strconv.Atoi(fields[i+1]); err == nil {
					loc.Length = n
				}
			case "circular":
				loc.Topology = Circular
			case "linear":
				loc.Topology = Linear
			}
		}
		loci = append(loci, loc)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read GenBank data")
	}
	return loci, nil
}

// Topologies maps each locus name in r to its topology.
func Topologies(r io.Reader) (map[string]Topology, error) {
	loci, err := ReadLoci(r)
	if err != nil {
		return nil, err
	}
	m := make(map[string]Topology, len(loci))
	for _, l := range loci {
		m[l.Name] = l.Topology
	}
	return m, nil
}
