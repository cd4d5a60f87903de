package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cbegin/quizsfx-go"
)

func main() {
	var (
		cue         = flag.String("cue", "correct-advanced", "cue id to play (see -list)")
		intensity   = flag.Float64("intensity", 1.0, "cue intensity (1 = nominal)")
		volume      = flag.Float64("volume", 0.7, "master volume 0..1")
		catalogName = flag.String("catalog", "spatial", "cue catalog: spatial|classic")
		backendName = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		distance    = flag.String("distance", "exponential", "distance model: inverse|exponential|linear")
		list        = flag.Bool("list", false, "list cue ids and exit")
		wavPath     = flag.String("wav", "", "render to a float32 WAV file instead of playing")
		seconds     = flag.Float64("seconds", 0, "render length for -wav (0 = cue length plus tail)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cat, err := quizsfx.CatalogByName(*catalogName)
	if err != nil {
		log.Fatal(err)
	}
	if *list {
		for _, id := range cat.IDs() {
			r, _ := cat.Lookup(id)
			fmt.Printf("%-24s %d notes  %v\n", id, len(r.Frequencies), r.Span())
		}
		return
	}
	recipe, err := cat.Lookup(*cue)
	if err != nil {
		log.Fatal(err)
	}

	model, err := quizsfx.ParseDistanceModel(*distance)
	if err != nil {
		log.Fatal(err)
	}
	opts := []quizsfx.Option{quizsfx.WithCatalog(cat), quizsfx.WithMasterVolume(*volume), quizsfx.WithDistanceModel(model)}
	if *verbose {
		opts = append(opts, quizsfx.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	tail := 250 * time.Millisecond
	if *wavPath != "" {
		length := *seconds
		if length <= 0 {
			length = (recipe.Span() + tail).Seconds()
		}
		samples, err := quizsfx.RenderCue(*cue, *intensity, length, opts...)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*wavPath, quizsfx.EncodeWAVFloat32LE(samples, 48000, 2), 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%.2fs)\n", *wavPath, length)
		return
	}

	backend, err := quizsfx.ParseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	engine, err := quizsfx.NewEngine(append(opts, quizsfx.WithBackend(backend))...)
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer engine.Shutdown()
	engine.Play(*cue, *intensity)
	time.Sleep(recipe.Span() + tail)
	fmt.Println("playback completed")
}
