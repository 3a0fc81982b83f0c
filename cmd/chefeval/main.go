package main

import "recipe-assistant/cmd/chefeval/cmd"

func main() {
	cmd.Execute()
}
