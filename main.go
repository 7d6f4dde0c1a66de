package main

import "vmsgate/cmd"

func main() {
	cmd.Execute()
}
