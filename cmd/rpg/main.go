package main

import "adhdrpg/cmd/rpg/root"

func main() {
	root.Execute()
}
