package main

import "github.com/oshokin/bedside-alarm/cmd/alarm-panel/cmd"

func main() {
	cmd.Execute()
}
