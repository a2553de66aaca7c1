package main

import "playerload/cmd"

func main() {
	cmd.Execute()
}
