package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/celebrity-detector/internal/celebrity"
	"github.com/kozaktomas/celebrity-detector/internal/logging"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image> [image...]",
	Short: "Identify the celebrity in one or more photos",
	Long: `Detect the largest face in each photo and ask the configured LLM who it is.

Example:
  celebrity-detector identify portrait.jpg
  celebrity-detector identify --output-dir annotated/ photos/*.jpg
  celebrity-detector identify --json photo.png > result.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().String("output-dir", "", "Write annotated images to this directory")
	identifyCmd.Flags().Bool("json", false, "Print results as JSON")
	identifyCmd.Flags().Int("workers", 2, "Number of photos processed concurrently")
}

// identifyResult is one line of CLI output.
type identifyResult struct {
	File           string                    `json:"file"`
	Identification *celebrity.Identification `json:"identification,omitempty"`
	AnnotatedPath  string                    `json:"annotated_path,omitempty"`
	Error          string                    `json:"error,omitempty"`
}

func runIdentify(cmd *cobra.Command, args []string) error {
	outputDir := mustGetString(cmd, "output-dir")
	asJSON := mustGetBool(cmd, "json")
	workers := max(mustGetInt(cmd, "workers"), 1)

	ctx := context.Background()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetDescription("Identifying"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetVisibility(len(args) > 1),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	outputs := annotatedPaths(args, outputDir)
	results := make([]identifyResult, len(args))
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for i, path := range args {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reqCtx := logging.WithRequestID(ctx, fmt.Sprintf("cli-%d", i+1))
			results[i] = identifyFile(reqCtx, a.service, path, outputs[i])
			bar.Add(1)
		}()
	}
	wg.Wait()
	bar.Finish()

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		printIdentifyResults(results)
		printUsage(a.service.Usage())
	}

	for _, r := range results {
		if r.Error != "" {
			return errors.New("some photos could not be processed")
		}
	}
	return nil
}

// annotatedPaths names one output file per input inside outputDir. Inputs sharing a
// base name get numbered suffixes instead of overwriting each other. An empty
// outputDir yields empty names.
func annotatedPaths(inputs []string, outputDir string) []string {
	out := make([]string, len(inputs))
	if outputDir == "" {
		return out
	}

	used := make(map[string]bool, len(inputs))
	for i, path := range inputs {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name := base + "_face.jpg"
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_face_%d.jpg", base, n)
		}
		used[strings.ToLower(name)] = true
		out[i] = filepath.Join(outputDir, name)
	}
	return out
}

// identifyFile identifies one photo and, when outPath is set and a face was found,
// writes the annotated image there.
func identifyFile(ctx context.Context, svc *celebrity.Service, path, outPath string) identifyResult {
	res := identifyResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	ident, err := svc.Identify(ctx, data)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Identification = ident

	if outPath != "" && ident.FaceDetected {
		if err := os.WriteFile(outPath, ident.Image, 0o644); err != nil {
			res.Error = fmt.Sprintf("writing annotated image: %v", err)
			return res
		}
		res.AnnotatedPath = outPath
	}
	return res
}

func printIdentifyResults(results []identifyResult) {
	for _, r := range results {
		fmt.Printf("\n=== %s ===\n", r.File)
		if r.Error != "" {
			fmt.Printf("Failed: %s\n", r.Error)
			continue
		}
		ident := r.Identification
		if ident.Face != nil {
			fmt.Printf("Face: x=%d y=%d %dx%d", ident.Face.X, ident.Face.Y, ident.Face.Width, ident.Face.Height)
			if ident.Cached {
				fmt.Print(" (cached)")
			}
			fmt.Println()
		}
		if ident.Name != "" {
			fmt.Printf("Name: %s\n", ident.Name)
		}
		fmt.Println(ident.Info)
		if r.AnnotatedPath != "" {
			fmt.Printf("Annotated image: %s\n", r.AnnotatedPath)
		}
	}
}
