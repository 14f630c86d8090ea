package main

import "go-chordbox/cmd"

func main() {
	cmd.Execute()
}
