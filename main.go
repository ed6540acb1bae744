package main

import (
	"github.com/masiarekpl/keypin/cmd"
)

func main() {
	cmd.Execute()
}
