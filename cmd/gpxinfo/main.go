// gpxinfo prints activity summaries for GPX files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/dominikstraub/Waddle/internal/models"
	"github.com/dominikstraub/Waddle/internal/parser"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type fileResult struct {
	Path       string           `json:"path"`
	Activities []models.Summary `json:"activities,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gpxinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	multi := fs.Bool("multi", false, "treat each track as a separate activity")
	asJSON := fs.Bool("json", false, "print results as JSON")
	workers := fs.Int("workers", 1, "tracks parsed concurrently in -multi mode")
	quiet := fs.Bool("q", false, "disable the progress bar")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: gpxinfo [-multi] [-json] [-workers N] file...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 || *workers < 1 {
		fs.Usage()
		return 2
	}

	p := parser.NewGPXParser(parser.WithWorkers(*workers))

	var bar *progressbar.ProgressBar
	if fs.NArg() > 1 && !*quiet {
		bar = progressbar.NewOptions(fs.NArg(),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("parsing"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}

	results := make([]fileResult, 0, fs.NArg())
	failed := false
	for _, path := range fs.Args() {
		res := fileResult{Path: path}
		activities, err := parseFile(p, path, *multi)
		if err != nil {
			res.Error = err.Error()
			failed = true
		}
		for _, a := range activities {
			res.Activities = append(res.Activities, a.Summary())
		}
		results = append(results, res)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "gpxinfo: %v\n", err)
			return 1
		}
	} else {
		for _, res := range results {
			printText(stdout, res)
		}
	}

	if failed {
		return 1
	}
	return 0
}

func parseFile(p parser.Parser, path string, multi bool) ([]*models.Activity, error) {
	if multi {
		return p.ParseFileMulti(path)
	}
	a, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return []*models.Activity{a}, nil
}

func printText(w io.Writer, res fileResult) {
	if res.Error != "" {
		fmt.Fprintf(w, "%s: error: %s\n", res.Path, res.Error)
		return
	}
	if len(res.Activities) == 0 {
		fmt.Fprintf(w, "%s: no activities\n", res.Path)
		return
	}
	for i, s := range res.Activities {
		name := s.ActivityType
		if name == "" {
			name = "(untitled)"
		}
		fmt.Fprintf(w, "%s [%d] %s\n", res.Path, i, name)
		fmt.Fprintf(w, "  start:     %s\n", s.StartTime.Format(time.RFC3339))
		fmt.Fprintf(w, "  laps:      %d (%d points)\n", s.LapCount, s.PointCount)
		fmt.Fprintf(w, "  distance:  %.2f km\n", s.Distance/1000)
		fmt.Fprintf(w, "  duration:  %s\n", s.Duration)
		fmt.Fprintf(w, "  speed:     avg %.2f m/s, max %.2f m/s\n", s.AvgSpeed, s.MaxSpeed)
		fmt.Fprintf(w, "  elevation: +%.1f m / -%.1f m\n", s.ElevationGain, s.ElevationLoss)
		if s.MaxHeartRate > 0 {
			fmt.Fprintf(w, "  heart:     avg %d bpm, max %d bpm\n", s.AvgHeartRate, s.MaxHeartRate)
		}
	}
}
