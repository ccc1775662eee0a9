package main

import "github.com/itsmostafa/bomfold/cmd"

func main() {
	cmd.Execute()
}
