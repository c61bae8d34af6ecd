package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/RobLoach/babel/pkg/api"
)

// Lowers the classes in a file and then runs the result with node to show
// that it still behaves the same
func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: example file.js")
		os.Exit(1)
	}

	source, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Println("[ERROR] ", err.Error())
		os.Exit(1)
	}

	result := api.Transform(string(source), api.TransformOptions{Sourcefile: os.Args[1]})
	for _, warn := range result.Warnings {
		fmt.Println("[WARN] ", warn.Text)
	}
	for _, err := range result.Errors {
		fmt.Println("[ERROR] ", err.Text)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
	fmt.Println(string(result.Code))

	node := exec.Command("node")
	node.Stdin = bytes.NewReader(result.Code)
	node.Stdout = os.Stdout
	node.Stderr = os.Stderr
	if err := node.Run(); err != nil {
		fmt.Println("[ERROR] ", err.Error())
		os.Exit(1)
	}
}
