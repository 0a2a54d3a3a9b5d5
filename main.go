package main

import "github.com/sarahsindone/sbrp-application/cmd"

func main() {
	cmd.Execute()
}
