package main

import "github.com/lepinkainen/bookscape/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
