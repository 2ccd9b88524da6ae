package main

import "mediaforge/cmd"

func main() {
	cmd.Execute()
}
