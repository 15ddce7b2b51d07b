package main

import "github.com/kfreiman/office2md/cmd"

func main() {
	cmd.Execute()
}
