package main

import "github.com/dvidx/vcsprompt/cmd"

func main() {
	cmd.Execute()
}
