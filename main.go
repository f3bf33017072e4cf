package main

import (
	"fmt"
	"os"

	"github.com/abhisek/ckdrisk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
