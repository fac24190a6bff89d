/*
Reads a triangle soup from stdin and renders it with the trigon engine.
The input is a vertex count-free stream: one leading triangle count followed
by nine floats per triangle.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/trigon/engine"
)

func main() {
	config, err := engine.LoadConfig("assets/config.toml")
	if err != nil {
		panic(err)
	}

	scene, err := ReadScene(os.Stdin)
	if err != nil {
		panic(err)
	}

	app, err := engine.New(config)
	if err != nil {
		panic(err)
	}

	if err := app.Initialize(); err != nil {
		panic(err)
	}

	if err := app.LoadScene(scene); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		_ = app.Shutdown()
	}()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
