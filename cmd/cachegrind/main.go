package main

import "github.com/janisozaur/valgrind/cmd/cachegrind/cmd"

func main() {
	cmd.Execute()
}
