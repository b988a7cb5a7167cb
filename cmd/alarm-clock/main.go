package main

import "github.com/oshokin/bedside-alarm/cmd/alarm-clock/cmd"

func main() {
	cmd.Execute()
}
