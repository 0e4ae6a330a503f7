package atsp

import (
	"fmt"
	"strings"
)

// InstanceFile is the JSON representation of an instance, optionally
// carrying the solutions computed for it.
type InstanceFile struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`

	Dimension       int         `json:"dimension"`
	EdgeWeightType  string      `json:"edge_weight_type"`
	Integral        bool        `json:"integral"`
	Objective       string      `json:"objective"`
	NodeCoordinates [][]float64 `json:"node_coordinates"`

	Solutions []*Solution `json:"solutions,omitempty"`
}

// Solution is the outcome of solving one formulation.
type Solution struct {
	Model     string  `json:"model"`
	Objective string  `json:"objective"`
	Route     []int   `json:"route"`
	Value     float64 `json:"value"`
	Runtime   float64 `json:"runtime"`
	Gap       float64 `json:"gap"`
	Status    int     `json:"status"`
	Found     bool    `json:"found"`
	Optimal   bool    `json:"optimal"`

	Time    string  `json:"time"`
	System  SysInfo `json:"system"`
	Comment string  `json:"comment"`
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}

func (s *Solution) String() string {
	var b strings.Builder
	b.WriteString("===================\n")
	fmt.Fprintf(&b, "Solution found for model %s\n", s.Model)
	b.WriteString("Route built:")
	for i, v := range s.Route {
		if i == 0 {
			fmt.Fprintf(&b, " %d", v)
		} else {
			fmt.Fprintf(&b, " -> %d", v)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Solution value: %g\n", s.Value)
	fmt.Fprintf(&b, "Runtime: %gs\n", s.Runtime)
	fmt.Fprintf(&b, "GAP: %g\n", s.Gap)
	b.WriteString("===================\n")
	return b.String()
}
