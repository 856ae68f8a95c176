package main

import "github.com/notargets/geodeform/cmd"

func main() {
	cmd.Execute()
}
