package main

import "github.com/dgcastano/provision/cmd"

func main() {
	cmd.Execute()
}
