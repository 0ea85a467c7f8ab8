package main

import (
	"github.com/bundle-tools/bundle-control-plane/cmd"
)

func main() {
	cmd.Execute()
}
