package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"git.solver4all.com/azaryc2s/atsp"
)

// Converts every "id,x,y" CSV file of a directory into a JSON instance.
// Usage: converter-csv <dir> [comment] [edge weight type]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: converter-csv <dir> [comment] [edge weight type]")
	}
	targetDir := os.Args[1]
	comment := ""
	if len(os.Args) > 2 {
		comment = os.Args[2]
	}
	edgeWeightType := "EUC_2D"
	if len(os.Args) > 3 {
		edgeWeightType = os.Args[3]
		if _, err := atsp.DistanceByName(edgeWeightType); err != nil {
			log.Fatal(err)
		}
	}
	files, err := os.ReadDir(targetDir)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".csv") {
			continue
		}
		fileName := filepath.Join(targetDir, f.Name())
		fmt.Println(fileName)
		inst, err := atsp.ReadCSVInstanceFile(fileName)
		if err != nil {
			log.Printf("At %s: %s\n", fileName, err.Error())
			continue
		}
		inst.Comment = comment
		inst.EdgeWeightType = edgeWeightType
		out := strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".json"
		if err := atsp.WriteInstanceFile(out, inst); err != nil {
			log.Printf("At %s: %s\n", out, err.Error())
		}
	}
}
