package main

import "github.com/hpratama/ingatan/cmd"

func main() {
	cmd.Execute()
}
