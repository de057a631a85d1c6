package main

import "github.com/medvault/medvault_backend/cmd"

func main() {
	cmd.Execute()
}
