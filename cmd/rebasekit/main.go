package main

import "github.com/rebasekit/rebasekit/internal/cmd"

func main() {
	cmd.Execute()
}
