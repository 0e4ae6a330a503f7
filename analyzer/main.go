package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/store"
)

// summary collects runtimes and gaps per formulation.
type summary map[string]*series

type series struct {
	runtime stats.Float64Data
	gap     stats.Float64Data
	optimal int
}

func (s summary) add(model string, runtime, gap float64, optimal bool) {
	ser, ok := s[model]
	if !ok {
		ser = &series{}
		s[model] = ser
	}
	ser.runtime = append(ser.runtime, runtime)
	ser.gap = append(ser.gap, gap)
	if optimal {
		ser.optimal++
	}
}

func main() {
	dbF := flag.String("db", "", "Path to a SQLite run database to analyze instead of a directory")
	tol := flag.Float64("tol", 1e-6, "Relative tolerance when comparing the stored and the recomputed value")
	flag.Parse()

	sum := summary{}
	switch {
	case *dbF != "":
		if err := analyzeDB(*dbF, sum); err != nil {
			log.Printf("At %s: %s\n", *dbF, err.Error())
			return
		}
	case flag.NArg() > 0:
		if err := analyzeDir(flag.Arg(0), *tol, sum); err != nil {
			log.Printf("Couldn't open directory %s: %s\n", flag.Arg(0), err.Error())
			return
		}
	default:
		log.Printf("No arguments passed!")
		return
	}
	printSummary(sum)
}

func analyzeDir(dirName string, tol float64, sum summary) error {
	dir, err := os.ReadDir(dirName)
	if err != nil {
		return err
	}
	fmt.Printf("Name,Model,Objective,Optimal,Time,Value,Gap,Dimension,Comment\n")
	for _, f := range dir {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		fileName := filepath.Join(dirName, f.Name())
		pInst, err := atsp.ReadInstanceFile(fileName)
		if err != nil {
			log.Printf("Couldn't read %s: %s\n", f.Name(), err.Error())
			continue
		}
		for _, sol := range pInst.Solutions {
			comment := sol.Comment
			if err := checkSolution(pInst, sol, tol); err != nil {
				comment += fmt.Sprintf("ANALYZER: Error = %s", err.Error())
			}
			fmt.Printf("%s,%s,%s,%t,%s,%g,%.4f,%d,%s\n", pInst.Name, sol.Model, sol.Objective, sol.Optimal,
				sol.Time, sol.Value, 100*sol.Gap, pInst.Dimension, strings.ReplaceAll(comment, ",", ";"))
			sum.add(sol.Model, sol.Runtime, sol.Gap, sol.Optimal)
		}
	}
	return nil
}

// checkSolution verifies that the route of sol is a tour of the instance
// whose value matches the reported one.
func checkSolution(pInst *atsp.InstanceFile, sol *atsp.Solution, tol float64) error {
	if !sol.Found {
		return nil
	}
	if err := atsp.CheckRoute(sol.Route, len(pInst.NodeCoordinates)); err != nil {
		return err
	}
	objective := pInst.Objective
	if sol.Objective != "" {
		objective = sol.Objective
	}
	file := *pInst
	file.Objective = objective
	inst, err := file.Instance()
	if err != nil {
		return err
	}
	value, err := inst.Evaluate(sol.Route)
	if err != nil {
		return err
	}
	if math.Abs(value-sol.Value) > tol*math.Max(1, math.Abs(value)) {
		return errors.Errorf("route has value %g but the solver says %g", value, sol.Value)
	}
	return nil
}

func analyzeDB(path string, sum summary) error {
	db, err := store.Open(path, nil)
	if err != nil {
		return err
	}
	defer db.Close()
	runs, err := db.Runs(context.Background(), "")
	if err != nil {
		return err
	}
	fmt.Printf("ID,Name,Model,Objective,Optimal,Runtime,Value,Gap,Dimension,Created\n")
	for _, r := range runs {
		fmt.Printf("%d,%s,%s,%s,%t,%g,%g,%.4f,%d,%s\n", r.ID, r.Instance, r.Model, r.Objective, r.Optimal,
			r.Runtime, r.Value, 100*r.Gap, r.Points, r.CreatedAt.Format("2006-01-02 15:04:05"))
		sum.add(r.Model, r.Runtime, r.Gap, r.Optimal)
	}
	return nil
}

func printSummary(sum summary) {
	if len(sum) == 0 {
		return
	}
	models := make([]string, 0, len(sum))
	for m := range sum {
		models = append(models, m)
	}
	sort.Strings(models)
	fmt.Printf("\nModel,Runs,Optimal,MeanRuntime,MedianRuntime,MaxRuntime,MeanGap\n")
	for _, m := range models {
		s := sum[m]
		meanRt, _ := stats.Mean(s.runtime)
		medianRt, _ := stats.Median(s.runtime)
		maxRt, _ := stats.Max(s.runtime)
		meanGap, _ := stats.Mean(s.gap)
		fmt.Printf("%s,%d,%d,%.4f,%.4f,%.4f,%.4f\n", m, len(s.runtime), s.optimal, meanRt, medianRt, maxRt, 100*meanGap)
	}
}
