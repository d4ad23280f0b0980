package main

import "github.com/pfrederiksen/defcamp-calendar/internal/cli"

func main() {
	cli.Execute()
}
