package main

import "github.com/pfrederiksen/flatiron-scraper/internal/cli"

func main() {
	cli.Execute()
}
