// Command takeoff-cli is the terminal front-end for the construction
// takeoff service: upload plan documents, run and track takeoffs, review
// results with an expert and export the extracted quantities.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags)

	// Panic recovery so a crash never leaves the terminal half-drawn
	// with no explanation.
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, buf[:n])
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
