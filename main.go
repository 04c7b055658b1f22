package main

import "SiteFM/cmd"

func main() {
	cmd.Execute()
}
