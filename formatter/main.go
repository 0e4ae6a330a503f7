package main

import (
	"log"
	"os"

	"git.solver4all.com/azaryc2s/atsp"
)

// Puts the numeric arrays of the given JSON files on single lines.
func main() {
	if len(os.Args) < 2 {
		log.Printf("No arguments passed!")
		return
	}
	for _, fileName := range os.Args[1:] {
		fileContent, err := os.ReadFile(fileName)
		if err != nil {
			log.Printf("At %s: %s\n", fileName, err.Error())
			continue
		}
		writeBackFile(string(fileContent), fileName)
	}
}

func writeBackFile(fileContent, fileName string) {
	fileContent = atsp.SanitizeJsonArrayLineBreaks(fileContent)
	err := os.WriteFile(fileName, []byte(fileContent), 0644)
	if err != nil {
		log.Printf("At %s: %s\n", fileName, err.Error())
		return
	}
}
