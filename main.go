package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/fw03/go-scene-raytracer/pkg/loaders"
	"github.com/fw03/go-scene-raytracer/pkg/renderer"
)

func main() {
	scenePath := flag.String("scene", "scene.yaml", "Path to the YAML scene description")
	output := flag.String("out", "render.png", "Output PNG file")
	aa := flag.Bool("aa", false, "Force anti-aliasing on")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Scene Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	sceneData, err := loaders.LoadScene(*scenePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}
	if *aa {
		sceneData.Settings.AntiAliasing = true
	}

	render := renderer.NewRender(nil)
	render.Start(sceneData)

	done := make(chan struct{})
	go func() {
		render.Wait()
		close(done)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-done:
			break wait
		case <-ticker.C:
			fmt.Printf("progress: %.1f%%\n", float64(render.Progress())/renderer.ProgressMax*100)
		}
	}

	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	if err := png.Encode(file, render.Image()); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render saved as %s (%d ms)\n", *output, render.TimeMs())
}
