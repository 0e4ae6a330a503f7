package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"git.solver4all.com/azaryc2s/atsp"
)

var objectives atsp.ArrayStringFlags
var nodes atsp.ArrayIntFlags

func main() {
	flag.Var(&objectives, "objective", "List of objectives. MIN_DIST (default), MAX_DIST, MINMAX_EDGE or MAXMIN_EDGE")
	flag.Var(&nodes, "n", "List of number of nodes")
	name := flag.String("name", "zarychta", "Name for the instance")
	count := flag.Int("count", 10, "Number of instances per combination")
	xTo := flag.Int("x", 10000, "Max value on the x-axis")
	yTo := flag.Int("y", 10000, "Max value on the y-axis")
	w := flag.String("w", "EUC_2D", "EDGE_WEIGHT_TYPE - how the distance between nodes is calculated.")
	integral := flag.Bool("integral", true, "Round the distances to the nearest integer")
	seed := flag.Int64("seed", 0, "Seed of the random generator. Current time by default")

	flag.Parse()

	if _, err := atsp.DistanceByName(*w); err != nil {
		log.Fatal(err)
	}
	if len(objectives) == 0 {
		objectives = atsp.ArrayStringFlags{atsp.MinDist.String()}
	}
	for i, o := range objectives {
		obj, err := atsp.ParseObjective(o)
		if err != nil {
			log.Fatal(err)
		}
		objectives[i] = obj.String()
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	for l := 0; l < *count; l++ {
		for _, n := range nodes {
			coordinatesArray := make([][]float64, n)
			for node := 0; node < n; node++ {
				coordinatesArray[node] = []float64{float64(rng.Intn(*xTo)), float64(rng.Intn(*yTo))}
			}
			for _, obj := range objectives {
				comment := fmt.Sprintf("%s instance Nr. %d with %d nodes optimizing %s", *name, l, n, obj)
				instName := fmt.Sprintf("%s_%d_%s_%d", *name, n, strings.ToLower(obj), l)
				inst := atsp.InstanceFile{
					Name:            instName,
					Comment:         comment,
					Type:            "ATSP",
					Dimension:       n,
					EdgeWeightType:  *w,
					Integral:        *integral,
					Objective:       obj,
					NodeCoordinates: coordinatesArray,
				}
				if err := atsp.WriteInstanceFile(fmt.Sprintf("%s.json", instName), &inst); err != nil {
					log.Fatal(err)
				}
			}
		}
	}
}
