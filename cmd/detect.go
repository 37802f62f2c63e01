package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/celebrity-detector/internal/config"
	"github.com/kozaktomas/celebrity-detector/internal/facedetect"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Detect the largest face without calling the LLM",
	Long: `Run face detection only: print the largest face box and write the annotated
image. Useful to check the cascade on a photo before spending tokens.

Example:
  celebrity-detector detect photo.jpg
  celebrity-detector detect photo.jpg --output boxed.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringP("output", "o", "", "Annotated image path (default <image>_face.jpg)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	path := args[0]
	output := mustGetString(cmd, "output")
	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + "_face.jpg"
	}

	cfg := config.Load()
	detector, err := facedetect.NewPigoDetector(cfg.Face.CascadePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	res, err := facedetect.Process(detector, data)
	if err != nil {
		return err
	}
	if !res.FaceDetected() {
		fmt.Println("No face detected! Please try another image.")
		return nil
	}

	if err := os.WriteFile(output, res.Image, 0o644); err != nil {
		return fmt.Errorf("writing annotated image: %w", err)
	}
	fmt.Printf("Face: x=%d y=%d %dx%d\n", res.Face.X, res.Face.Y, res.Face.Width, res.Face.Height)
	fmt.Printf("Annotated image: %s\n", output)
	return nil
}
