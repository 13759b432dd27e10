package main

import "tfgs-backend/cmd"

func main() {
	cmd.Execute()
}
