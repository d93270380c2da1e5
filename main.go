package main

import "github.com/KaramelBytes/leasemap/cmd"

func main() {
	cmd.Execute()
}
