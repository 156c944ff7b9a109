package main

import "github.com/example/roombooker/cmd"

func main() {
	cmd.Execute()
}
