package main

import "github.com/kozaktomas/celebrity-detector/cmd"

func main() {
	cmd.Execute()
}
