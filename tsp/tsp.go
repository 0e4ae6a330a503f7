// Package tsp builds the DFJ, MTZ and GG integer programming formulations of
// the asymmetric traveling salesman problem on a mip.Backend, solves them and
// reconstructs the tour.
//
// All three formulations share the assignment core: a binary arc variable
// x_i_j for every ordered pair of cities and one outgoing and one incoming
// arc per city. They differ in how subtours are cut off:
//
//	DFJ  one constraint per subset of 2..n-1 cities (exponential in n)
//	MTZ  potentials u_i that must grow along every arc not touching city 1
//	GG   a single-commodity flow g_i_j sent from city 1, one unit per city
//
// Cities are numbered 1..n.
package tsp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
)

// Kind selects a subtour elimination formulation.
type Kind int

const (
	DFJ Kind = iota
	MTZ
	GG
)

var kindNames = [...]string{"DFJ", "MTZ", "GG"}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// Kinds returns all formulations.
func Kinds() []Kind {
	return []Kind{DFJ, MTZ, GG}
}

// ParseKind parses the names returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Kind(i), nil
		}
	}
	return -1, errors.Wrapf(atsp.ErrFactoryBadInput, "%q", s)
}

type family uint8

const (
	famX family = iota
	famU
	famG
	famZ
)

var familyNames = [...]string{"x", "u", "g", "z"}

// varKey identifies a formulation variable by family and city indices.
// Unused indices are zero.
type varKey struct {
	fam  family
	i, j int
}

func (k varKey) String() string {
	switch k.fam {
	case famX, famG:
		return fmt.Sprintf("%s_%d_%d", familyNames[k.fam], k.i, k.j)
	case famU:
		return fmt.Sprintf("%s_%d", familyNames[k.fam], k.i)
	}
	return familyNames[k.fam]
}

// registry maps formulation variables to backend handles.
type registry map[varKey]mip.Var

func (r registry) get(fam family, i, j int) mip.Var {
	k := varKey{fam: fam, i: i, j: j}
	v, ok := r[k]
	if !ok {
		panic(fmt.Sprintf("tsp: variable %v was never created", k))
	}
	return v
}
