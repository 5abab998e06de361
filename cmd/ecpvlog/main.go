package main

import "github.com/opentrellis/ecpvlog/cmd/ecpvlog/cmd"

func main() {
	cmd.Execute()
}
