package main

import "github.com/surge-downloader/mktorrent/cmd"

func main() {
	cmd.Execute()
}
