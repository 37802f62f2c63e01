package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "celebrity-detector",
	Short: "Identify celebrities in photos using face detection and an LLM",
	Long: `Celebrity Detector finds the largest face in a photo, marks it with a green
box and asks a vision LLM (Groq, OpenAI, Gemini or Ollama) who the person is.
Follow-up questions about the identified celebrity are answered by the same model.

Run "celebrity-detector serve" for the web interface or use the identify, ask
and detect commands directly.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (overrides LOG_FORMAT)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
