package main

import "github.com/wabdoteth/sappy-care/cmd/sappy/root"

func main() {
	root.Execute()
}
