package main

import "github.com/KaramelBytes/songlens-cli/cmd"

func main() {
	cmd.Execute()
}
