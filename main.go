package main

import "github.com/apexgp/race-engine/cmd"

func main() {
	cmd.Execute()
}
