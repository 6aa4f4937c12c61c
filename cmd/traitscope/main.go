package main

import (
	"github.com/funvibe/traitscope/pkg/cmd"
)

func main() {
	cmd.Execute()
}
