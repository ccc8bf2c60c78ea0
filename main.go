package main

import (
	"github.com/dvla-io/dvla/cmd"
)

func main() {
	cmd.Execute()
}
