package main

import "github.com/daffaghiffarykusuma/rekonime-sub000/cmd"

func main() {
	cmd.Execute()
}
