package main

import (
	"github.com/AndersSpringborg/chronus/pkg/cli"
)

func main() {
	cli.Execute()
}
