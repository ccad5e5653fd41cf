package main

import "github.com/kozaktomas/face-filter/cmd"

func main() {
	cmd.Execute()
}
