package main

import "github.com/aburizalp/ministry-management/cmd"

func main() {
	cmd.Execute()
}
