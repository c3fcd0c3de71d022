package main

import "github.com/kozaktomas/photo-librarian/cmd"

func main() {
	cmd.Execute()
}
