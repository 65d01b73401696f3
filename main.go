package main

import "github.com/user/urlingest/cmd"

func main() {
	cmd.Execute()
}
