package main

import "github.com/bughunter/bughunter/cmd"

func main() {
	cmd.Execute()
}
