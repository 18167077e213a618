package main

import "github.com/papapumpkin/syllabus/cmd"

func main() {
	cmd.Execute()
}
