package main

import (
	"log"

	"github.com/kilianp07/mineguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("mineguard: %v", err)
	}
}
