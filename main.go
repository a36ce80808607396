package main

import "github.com/KaramelBytes/rankedinc-cli/cmd"

func main() {
	cmd.Execute()
}
