package main

import (
	"log"

	"github.com/akarasev/shurl/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalln("Failed to initialize application:", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalln("Application terminated:", err)
	}
}
