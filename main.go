package main

import "github.com/KaramelBytes/surfloom-cli/cmd"

func main() {
	cmd.Execute()
}
