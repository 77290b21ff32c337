package main

import "calltree/cmd"

func main() {
	cmd.Execute()
}
