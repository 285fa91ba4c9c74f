package main

import "github.com/Norgate-AV/cppbind/cmd"

func main() {
	cmd.Execute()
}
