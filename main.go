package main

import "benchit/cmd"

func main() {
	cmd.Execute()
}
