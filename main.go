package main

import (
	"github.com/arbelos/polysched/cmd"
)

func main() {
	cmd.Execute()
}
