/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
	"git.solver4all.com/azaryc2s/atsp/store"
	"git.solver4all.com/azaryc2s/atsp/tsp"
)

var (
	models    atsp.ArrayStringFlags
	inputF    *string
	outputF   *string
	paramsF   *string
	dbF       *string
	logF      *string
	objective *string
	timeLimit *float64
	debug     *bool
)

func main() {
	flag.Var(&models, "model", "Formulation to solve, can be repeated. DFJ, MTZ or GG (default all three)")
	inputF = flag.String("input", "input.json", "Path to the input instance, JSON or CSV")
	outputF = flag.String("output", "", "Path to the output file. By default the input file will be overwritten adding the solutions")
	paramsF = flag.String("params", "", "Path to a YAML file with the solver parameters")
	dbF = flag.String("db", "", "Path to a SQLite database to record the runs in")
	logF = flag.String("log", "", "Path to the log file. Logs to the console by default")
	objective = flag.String("objective", "", "Overrides the objective of the instance. MIN_DIST, MAX_DIST, MINMAX_EDGE or MAXMIN_EDGE")
	timeLimit = flag.Float64("timeLimit", 0, "Time limit in seconds per formulation, overrides the parameter file")
	debug = flag.Bool("debug", false, "Log the model building steps")

	flag.Parse()

	logger, err := atsp.NewLogger(*logF, *debug)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Sugar().Errorf("At %s: %s", *inputF, err.Error())
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	pInst, err := atsp.LoadInstanceFile(*inputF)
	if err != nil {
		return err
	}
	if *objective != "" {
		pInst.Objective = strings.ToUpper(*objective)
	}
	inst, err := pInst.Instance()
	if err != nil {
		return err
	}

	params := mip.DefaultParams()
	if *paramsF != "" {
		if params, err = mip.LoadParams(*paramsF); err != nil {
			return err
		}
	}
	if *timeLimit > 0 {
		params.TimeLimit = *timeLimit
	}
	env := mip.NewEnv(params, logger.Named("mip"))

	kinds, err := selectKinds(models)
	if err != nil {
		return err
	}

	var db *store.DB
	if *dbF != "" {
		if db, err = store.Open(*dbF, logger.Named("store")); err != nil {
			return err
		}
		defer db.Close()
	}

	creator := tsp.NewCreator(env, inst,
		tsp.WithLogger(logger.Named("tsp")),
		tsp.WithSysInfo(atsp.CollectSysInfo()))

	for _, kind := range kinds {
		sol, err := solveKind(logger, creator, kind)
		if err != nil {
			logger.Sugar().Errorf("At %s: %s", *inputF, err.Error())
			continue
		}
		pInst.Solutions = append(pInst.Solutions, sol)
		if db != nil {
			if _, err := db.Save(context.Background(), store.NewRun(pInst.Name, inst.Len(), sol)); err != nil {
				logger.Sugar().Errorf("At %s: %s", *dbF, err.Error())
			}
		}
	}

	logger.Info("---OPTIMIZATION DONE--- Generating and writing result now")
	return atsp.WriteInstanceFile(outputPath(), pInst)
}

// solveKind builds and solves one formulation. An incomplete route is kept
// in the returned solution.
func solveKind(logger *zap.Logger, creator *tsp.Creator, kind tsp.Kind) (*atsp.Solution, error) {
	logger.Sugar().Infof("Building the %s formulation", kind)
	model, err := creator.Build(kind)
	if err != nil {
		return nil, err
	}
	defer model.Free()

	if err := model.Solve(); err != nil && !errors.Is(err, atsp.ErrIncompleteSolution) {
		return nil, err
	} else if err != nil {
		logger.Sugar().Warnf("At %s: %s", *inputF, err.Error())
	}
	if b, ok := model.Backend().(*mip.Model); ok {
		logger.Info("Search finished", searchFields(kind, b)...)
	}
	if err := model.Report(os.Stdout); err != nil {
		return nil, err
	}
	sol := *model.Solution()
	return &sol, nil
}

// searchFields describes the branch and bound search of b.
func searchFields(kind tsp.Kind, b *mip.Model) []zap.Field {
	fields := []zap.Field{
		zap.String("model", kind.String()),
		zap.String("status", mip.StatusString(b.Status())),
		zap.Int("nodes", b.NodeCount()),
	}
	if bound, err := b.ObjBound(); err == nil {
		fields = append(fields, zap.Float64("bound", bound))
	}
	return fields
}

func selectKinds(names []string) ([]tsp.Kind, error) {
	if len(names) == 0 {
		return tsp.Kinds(), nil
	}
	kinds := make([]tsp.Kind, 0, len(names))
	for _, name := range names {
		kind, err := tsp.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// outputPath is -output, or the input itself. A CSV input gets a JSON file
// next to it.
func outputPath() string {
	if *outputF != "" {
		return *outputF
	}
	if ext := filepath.Ext(*inputF); strings.EqualFold(ext, ".csv") {
		return strings.TrimSuffix(*inputF, ext) + ".json"
	}
	return *inputF
}
