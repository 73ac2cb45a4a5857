package main

import "github.com/mabhi256/vardig/cmd"

func main() {
	cmd.Execute()
}
