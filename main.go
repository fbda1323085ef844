package main

import "github.com/Oumaima1mal/task-pilot-front/cmd"

func main() {
	cmd.Execute()
}
