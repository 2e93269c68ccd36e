package main

import "yt-mp3-service/cmd"

func main() {
	cmd.Execute()
}
