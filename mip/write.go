package mip

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Write saves the model in CPLEX LP format.
func (m *Model) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteLP(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLP writes the model in CPLEX LP format to w. Unnamed variables and
// constraints are called C<i> and R<i>.
func (m *Model) WriteLP(w io.Writer) error {
	if m.freed {
		return ErrFreed
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\\ Model %s\n", m.name)
	if m.sense == MAXIMIZE {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	var (
		idx []int
		val []float64
	)
	for j, c := range m.obj {
		if c != 0 {
			idx = append(idx, j)
			val = append(val, c)
		}
	}
	fmt.Fprintf(bw, " obj: %s", m.linear(idx, val))
	if m.objConst != 0 {
		fmt.Fprintf(bw, " %+g Constant", m.objConst)
	}
	bw.WriteString("\nSubject To\n")
	for i, r := range m.rows {
		name := r.name
		if name == "" {
			name = fmt.Sprintf("R%d", i)
		}
		fmt.Fprintf(bw, " %s: %s %s %g\n", name, m.linear(r.idx, r.val), r.rel, r.rhs)
	}
	bw.WriteString("Bounds\n")
	var bins, gens []string
	for j := range m.lb {
		name := m.varName(j)
		switch m.vtype[j] {
		case BINARY:
			bins = append(bins, name)
			continue
		case INTEGER:
			gens = append(gens, name)
		}
		lb, ub := m.lb[j], m.ub[j]
		switch {
		case math.IsInf(lb, -1) && math.IsInf(ub, 1):
			fmt.Fprintf(bw, " %s free\n", name)
		case math.IsInf(ub, 1):
			if lb != 0 {
				fmt.Fprintf(bw, " %s >= %g\n", name, lb)
			}
		case math.IsInf(lb, -1):
			fmt.Fprintf(bw, " -infinity <= %s <= %g\n", name, ub)
		default:
			fmt.Fprintf(bw, " %g <= %s <= %g\n", lb, name, ub)
		}
	}
	writeSection(bw, "Binaries", bins)
	writeSection(bw, "Generals", gens)
	bw.WriteString("End\n")
	return bw.Flush()
}

func writeSection(w *bufio.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	w.WriteString(title + "\n")
	for i := 0; i < len(names); i += 8 {
		end := i + 8
		if end > len(names) {
			end = len(names)
		}
		w.WriteString(" " + strings.Join(names[i:end], " ") + "\n")
	}
}

func (m *Model) varName(j int) string {
	if m.varNames[j] != "" {
		return m.varNames[j]
	}
	return fmt.Sprintf("C%d", j)
}

func (m *Model) linear(idx []int, val []float64) string {
	if len(idx) == 0 {
		return "0"
	}
	var b strings.Builder
	for k, j := range idx {
		v := val[k]
		switch {
		case k == 0 && v < 0:
			b.WriteString("- ")
		case k > 0 && v < 0:
			b.WriteString(" - ")
		case k > 0:
			b.WriteString(" + ")
		}
		if a := math.Abs(v); a != 1 {
			fmt.Fprintf(&b, "%g ", a)
		}
		b.WriteString(m.varName(j))
	}
	return b.String()
}
