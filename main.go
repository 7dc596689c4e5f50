package main

import "github.com/MyCarrier-DevOps/go-gitversioner/cmd"

func main() {
	cmd.Execute()
}
