package main

import "github.com/eddychk/viagoscrap/cmd"

func main() {
	cmd.Execute()
}
