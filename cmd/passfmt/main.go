package main

import "passfmt/cli"

func main() {
	cli.Default().Run()
}
