package main

import "github.com/msaada/donation-platform/cmd"

func main() {
	cmd.Execute()
}
