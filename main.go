package main

import "stats-tools/cmd"

func main() {
	cmd.Execute()
}
