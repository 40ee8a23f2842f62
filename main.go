package main

import (
	"os"
	"os/signal"
	"syscall"

	"lockd/cmd"
)

func main() {
	opts := cmd.ParseFlags()
	app := cmd.Create(opts)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Stop()
}
