/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

// lp-asym writes the formulations of the instances given as arguments to LP
// files next to them, without solving.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
	"git.solver4all.com/azaryc2s/atsp/tsp"
)

var models atsp.ArrayStringFlags

func main() {
	flag.Var(&models, "model", "Formulation to write, can be repeated. DFJ, MTZ or GG (default all three)")
	debug := flag.Bool("debug", false, "Log the model building steps")
	flag.Parse()

	logger, err := atsp.NewLogger("", *debug)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	kinds := tsp.Kinds()
	if len(models) > 0 {
		kinds = kinds[:0]
		for _, name := range models {
			kind, err := tsp.ParseKind(name)
			if err != nil {
				log.Fatal(err)
			}
			kinds = append(kinds, kind)
		}
	}

	params := mip.DefaultParams()
	params.OutputFlag = false
	env := mip.NewEnv(params, logger)

	for _, arg := range flag.Args() {
		pInst, err := atsp.LoadInstanceFile(arg)
		if err != nil {
			log.Errorf("At %s: %s", arg, err.Error())
			continue
		}
		inst, err := pInst.Instance()
		if err != nil {
			log.Errorf("At %s: %s", arg, err.Error())
			continue
		}
		creator := tsp.NewCreator(env, inst, tsp.WithLogger(logger.Named("tsp")))
		base := strings.TrimSuffix(arg, filepath.Ext(arg))
		for _, kind := range kinds {
			if err := writeLP(creator, kind, base); err != nil {
				log.Errorf("At %s: %s", arg, err.Error())
			}
		}
	}
}

// writeLP writes <base>.<kind>.lp.
func writeLP(creator *tsp.Creator, kind tsp.Kind, base string) error {
	model, err := creator.Build(kind)
	if err != nil {
		return err
	}
	defer model.Free()

	lpName := fmt.Sprintf("%s.%s.lp", base, strings.ToLower(kind.String()))
	if err := model.Write(lpName); err != nil {
		return err
	}
	info, err := os.Stat(lpName)
	if err != nil {
		return err
	}
	backend := model.Backend().(*mip.Model)
	fmt.Printf("%s: %d variables, %d constraints, %s\n",
		lpName, backend.NumVars(), backend.NumConstrs(), humanize.Bytes(uint64(info.Size())))
	return nil
}
