package main

import "github.com/ibcoder/portfolio/cmd/portfolio/cmd"

func main() {
	cmd.Execute()
}
