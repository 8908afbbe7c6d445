package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/leafo/tunebridge"
	"github.com/leafo/tunebridge/internal/preview"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "synthesize":
		runSynthesize(os.Args[2:])
	case "midi":
		runMidi(os.Args[2:])
	case "preview":
		runPreview(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <synthesize|midi|preview> [flags]\n", os.Args[0])
}

func runSynthesize(args []string) {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)
	taskPath := fs.String("task", "", "path to synthesis task JSON")
	backendDir := fs.String("backend", "", "path to the backend install directory")
	outPath := fs.String("out", "", "path to write the response JSON (stdout if empty)")
	jsonOnly := fs.Bool("json", false, "suppress the progress display and print only JSON")
	fs.Parse(args)

	if *taskPath == "" || *backendDir == "" {
		log.Printf("both -task and -backend are required")
		os.Exit(1)
	}

	taskJSON, err := os.ReadFile(*taskPath)
	if err != nil {
		log.Printf("failed to read task file: %v", err)
		os.Exit(1)
	}

	engine, err := tunebridge.NewEngine(*backendDir)
	if err != nil {
		log.Printf("failed to initialize backend engine: %v", err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	pipeline := tunebridge.NewPipeline(engine)

	var progress *synthesisProgress
	if !*jsonOnly {
		progress = startSynthesisProgress()
		defer progress.stop()
	}

	response, err := pipeline.Synthesize(taskJSON, nil)
	if err != nil {
		log.Printf("synthesis failed: %v", err)
		os.Exit(1)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, response, 0o644); err != nil {
			log.Printf("failed to write response: %v", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(string(response))
}

func runMidi(args []string) {
	fs := flag.NewFlagSet("midi", flag.ExitOnError)
	taskPath := fs.String("task", "", "path to synthesis task JSON")
	outPath := fs.String("out", "", "path to write the .mid file")
	fs.Parse(args)

	if *taskPath == "" || *outPath == "" {
		log.Printf("both -task and -out are required")
		os.Exit(1)
	}

	score, err := scoreFromTaskFile(*taskPath)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Printf("failed to create output file: %v", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := score.WriteSMF(out); err != nil {
		log.Printf("failed to export MIDI: %v", err)
		os.Exit(1)
	}
}

func runPreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	taskPath := fs.String("task", "", "path to synthesis task JSON")
	soundfontPath := fs.String("soundfont", "", "path to a .sf2 SoundFont")
	outPath := fs.String("out", "", "path to write the rendered .wav file")
	fs.Parse(args)

	if *taskPath == "" || *soundfontPath == "" || *outPath == "" {
		log.Printf("-task, -soundfont, and -out are all required")
		os.Exit(1)
	}

	score, err := scoreFromTaskFile(*taskPath)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	samples, sampleRate, err := preview.Render(&score, *soundfontPath)
	if err != nil {
		log.Printf("preview render failed: %v", err)
		os.Exit(1)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Printf("failed to create output file: %v", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := tunebridge.WriteWave(out, samples, sampleRate); err != nil {
		log.Printf("failed to write wav file: %v", err)
		os.Exit(1)
	}
}

func scoreFromTaskFile(taskPath string) (tunebridge.Score, error) {
	data, err := os.ReadFile(taskPath)
	if err != nil {
		return tunebridge.Score{}, fmt.Errorf("failed to read task file: %w", err)
	}

	task, err := tunebridge.ParseSynthesisTaskJSON(data)
	if err != nil {
		return tunebridge.Score{}, fmt.Errorf("failed to parse task file: %w", err)
	}

	score, err := tunebridge.TaskToScore(task)
	if err != nil {
		return tunebridge.Score{}, fmt.Errorf("failed to build score: %w", err)
	}
	return score, nil
}
