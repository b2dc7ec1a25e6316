package main

import "github.com/KaramelBytes/clusterflow-cli/cmd"

func main() {
	cmd.Execute()
}
