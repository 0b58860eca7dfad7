package main

import (
	"github.com/josehu07/codetective/cmd"
)

func main() {
	cmd.Execute()
}
