package main

import "github.com/hamen/android-mcp/cmd"

func main() {
	cmd.Execute()
}
