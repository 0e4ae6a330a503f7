package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/atsp"
)

// Converts every TSPLIB file (.tsp, .atsp) of a directory with a
// NODE_COORD_SECTION into a JSON instance.
// Usage: converter-tsplib <dir> [objective]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: converter-tsplib <dir> [objective]")
	}
	targetDir := os.Args[1]
	objective := atsp.MinDist
	if len(os.Args) > 2 {
		o, err := atsp.ParseObjective(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		objective = o
	}
	files, err := os.ReadDir(targetDir)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if f.IsDir() || (ext != ".tsp" && ext != ".atsp") {
			continue
		}
		fileName := filepath.Join(targetDir, f.Name())
		fmt.Println(fileName)
		if err := convert(fileName, objective); err != nil {
			log.Printf("At %s: %s\n", fileName, err.Error())
		}
	}
}

func convert(fileName string, objective atsp.Objective) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	inst, err := parseTSPLIB(file)
	if err != nil {
		return err
	}
	inst.Objective = objective.String()
	if inst.Name == "" {
		inst.Name = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	}
	return atsp.WriteInstanceFile(strings.TrimSuffix(fileName, filepath.Ext(fileName))+".json", inst)
}

// parseTSPLIB reads the header keywords and the NODE_COORD_SECTION of a
// TSPLIB file. EUC_2D, MAN_2D and MAX_2D distances are rounded to the nearest
// integer as TSPLIB defines them.
func parseTSPLIB(r io.Reader) (*atsp.InstanceFile, error) {
	inst := &atsp.InstanceFile{Type: "ATSP"}
	scanner := bufio.NewScanner(r)
	line := 0
	metaData := true
	dimension := -1
	for scanner.Scan() {
		line++
		t := strings.TrimSpace(scanner.Text())
		if t == "" {
			continue
		}
		if t == "EOF" {
			break
		}
		if metaData {
			if t == "NODE_COORD_SECTION" {
				metaData = false
				continue
			}
			if strings.HasSuffix(t, "_SECTION") {
				return nil, errors.Errorf("line %d: %s is not supported", line, t)
			}
			key, value, ok := strings.Cut(t, ":")
			if !ok {
				return nil, errors.Errorf("line %d: expected KEY : VALUE", line)
			}
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			switch key {
			case "NAME":
				inst.Name = value
			case "COMMENT":
				if inst.Comment != "" {
					inst.Comment += " | "
				}
				inst.Comment += value
			case "TYPE":
			case "DIMENSION":
				d, err := strconv.Atoi(value)
				if err != nil || d < 0 {
					return nil, errors.Errorf("line %d: bad dimension %q", line, value)
				}
				dimension = d
			case "EDGE_WEIGHT_TYPE":
				if _, err := atsp.DistanceByName(value); err != nil {
					return nil, errors.Wrapf(err, "line %d", line)
				}
				inst.EdgeWeightType = value
				inst.Integral = value != "CEIL_2D"
			}
			continue
		}
		fields := strings.Fields(t)
		if len(fields) < 3 {
			return nil, errors.Errorf("line %d: expected an index and coordinates", line)
		}
		coords := make([]float64, 0, len(fields)-1)
		for _, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			coords = append(coords, v)
		}
		inst.NodeCoordinates = append(inst.NodeCoordinates, coords)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if metaData {
		return nil, errors.New("no NODE_COORD_SECTION")
	}
	if dimension >= 0 && dimension != len(inst.NodeCoordinates) {
		return nil, errors.Errorf("DIMENSION is %d but %d nodes were read", dimension, len(inst.NodeCoordinates))
	}
	inst.Dimension = len(inst.NodeCoordinates)
	if inst.EdgeWeightType == "" {
		inst.EdgeWeightType = "EUC_2D"
		inst.Integral = true
	}
	return inst, nil
}
