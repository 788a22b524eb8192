package main

import "collab-match-backend/cmd"

func main() {
	cmd.Run()
}
