package main

import "github.com/jmehdipour/wifi-billing/cmd"

func main() {
	cmd.Execute()
}
