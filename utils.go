package atsp

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	jsonNumbers  = regexp.MustCompile(`\s*([-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?),\s+([-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?)(,)?`)
	jsonBrackets = regexp.MustCompile(`\[(([-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?,)+[-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?)\s+\](,?)(\s+)`)
)

// SanitizeJsonArrayLineBreaks puts numeric arrays of an indented JSON
// document on a single line.
func SanitizeJsonArrayLineBreaks(json string) string {
	res := json
	for jsonNumbers.MatchString(res) {
		res = jsonNumbers.ReplaceAllString(res, "$1,$4$7")
	}
	for jsonBrackets.MatchString(res) {
		res = jsonBrackets.ReplaceAllString(res, "[$1]$7$8")
	}
	return res
}

// ReadInstanceFile reads a JSON instance.
func ReadInstanceFile(path string) (*InstanceFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f InstanceFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &f, nil
}

// WriteInstanceFile writes f as indented JSON with compact number arrays.
func WriteInstanceFile(path string, f *InstanceFile) error {
	b, err := json.MarshalIndent(f, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SanitizeJsonArrayLineBreaks(string(b))), 0644)
}

// Points converts the node coordinates of f.
func (f *InstanceFile) Points() []Point {
	points := make([]Point, len(f.NodeCoordinates))
	for i, c := range f.NodeCoordinates {
		points[i] = NewPoint(c...)
	}
	return points
}

// Instance builds the Instance described by f. An empty objective means
// MIN_DIST and an empty edge weight type means Euclidean.
func (f *InstanceFile) Instance() (*Instance, error) {
	obj := MinDist
	if f.Objective != "" {
		o, err := ParseObjective(f.Objective)
		if err != nil {
			return nil, err
		}
		obj = o
	}
	dist := DistanceFunc(Euclidean)
	if f.EdgeWeightType != "" {
		d, err := DistanceByName(f.EdgeWeightType)
		if err != nil {
			return nil, err
		}
		dist = d
	}
	if f.Integral {
		dist = Nint(dist)
	}
	return NewInstance(f.Points(), obj, dist), nil
}

// ReadCSVPoints reads rows of the form "id,x,y[,z...]". A first row that does
// not parse as numbers is taken as a header and skipped.
func ReadCSVPoints(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var (
		points []Point
		dim    = -1
		row    = 0
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			return nil, errors.Errorf("row %d: expected an id and at least one coordinate", row)
		}
		coords := make([]float64, 0, len(rec)-1)
		var perr error
		for _, field := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				perr = err
				break
			}
			coords = append(coords, v)
		}
		if perr != nil {
			if row == 1 {
				continue
			}
			return nil, errors.Wrapf(perr, "row %d", row)
		}
		if dim >= 0 && len(coords) != dim {
			return nil, errors.Wrapf(ErrDistanceFunctionBadInput, "row %d has %d coordinates, expected %d", row, len(coords), dim)
		}
		dim = len(coords)
		points = append(points, NewPoint(coords...))
	}
	return points, nil
}

// NewInstanceFile describes points as a Euclidean instance named name.
func NewInstanceFile(name string, points []Point) *InstanceFile {
	f := &InstanceFile{
		Name:            name,
		Type:            "ATSP",
		Dimension:       len(points),
		EdgeWeightType:  "EUC_2D",
		Objective:       MinDist.String(),
		NodeCoordinates: make([][]float64, len(points)),
	}
	for i, p := range points {
		f.NodeCoordinates[i] = p.Coords()
	}
	return f
}

// ReadCSVInstanceFile reads a CSV point list as an instance named after the
// file.
func ReadCSVInstanceFile(path string) (*InstanceFile, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	points, err := ReadCSVPoints(in)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewInstanceFile(name, points), nil
}

// LoadInstanceFile reads a JSON instance, or a CSV point list when path ends
// in ".csv".
func LoadInstanceFile(path string) (*InstanceFile, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSVInstanceFile(path)
	}
	return ReadInstanceFile(path)
}

// CheckRoute verifies that route visits every city of an instance with n
// cities exactly once and returns a description of the first violation.
func CheckRoute(route []int, n int) error {
	if len(route) != n {
		return errors.Wrapf(ErrIncompleteSolution, "route has %d cities, expected %d", len(route), n)
	}
	used := make([]bool, n+1)
	for _, v := range route {
		if v < 1 || v > n {
			return errors.Wrapf(ErrIncompleteSolution, "city %d out of range", v)
		}
		if used[v] {
			return errors.Wrapf(ErrIncompleteSolution, "city %d visited twice", v)
		}
		used[v] = true
	}
	return nil
}
