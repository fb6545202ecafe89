package main

import "github.com/solheim-lab/hyttevakt/cmd"

func main() {
	cmd.Execute()
}
