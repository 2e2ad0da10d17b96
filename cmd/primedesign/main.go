package main

import (
	"log"
	"os"
	"os/exec"

	"github.com/Lattice-Automation/primedesign/internal/cmd"
	"github.com/Lattice-Automation/primedesign/internal/config"
)

func main() {
	checkDependencies()
	config.Setup("")

	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func checkDependencies() {
	if _, err := exec.LookPath("primer3_core"); err != nil {
		log.Fatal(`No primer3_core found. Is Primer3 installed? https://primer3.org/manual.html`)
	}

	if _, err := exec.LookPath("ntthal"); err != nil {
		log.Fatal(`No ntthal found. Is Primer3 installed? https://primer3.org/manual.html`)
	}
}
