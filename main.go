package main

import "flowtrigger/cmd"

func main() {
	cmd.Execute()
}
