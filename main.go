package main

import "github.com/notargets/hemopost/cmd"

func main() {
	cmd.Execute()
}
