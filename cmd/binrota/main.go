package main

import "github.com/example/binrota/cmd"

func main() {
	cmd.Execute()
}
