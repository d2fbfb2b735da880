package main

import (
	"os"

	"blogposts/app/config"
	"blogposts/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain loads the configuration and runs the requested command.
func RealMain() {
	cfg := config.Load()
	cli := service.NewCLI(cfg, CliVersion, os.Stdin, os.Stdout)
	exit(cli.Run(os.Args[1:]))
}
