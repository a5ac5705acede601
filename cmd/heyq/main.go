package main

import "heyq/cmd"

func main() {
	cmd.Execute()
}
