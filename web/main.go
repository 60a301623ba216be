package main

import (
	"flag"
	"log"
	"os"

	"github.com/fw03/go-scene-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	webServer := server.NewServer(*port, nil)

	log.Printf("Scene Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
