package main

import (
	"os"

	"github.com/LanXuage/gping/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
