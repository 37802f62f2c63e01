package ai

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kozaktomas/celebrity-detector/internal/constants"
)

//go:embed prompts/identify.txt
var identifyPrompt string

//go:embed prompts/ask.txt
var askPrompt string

const fullNamePrefix = "-**full name**"

// buildIdentifyPrompt returns the embedded celebrity recognition prompt.
func buildIdentifyPrompt() string {
	return strings.TrimSpace(identifyPrompt)
}

// buildAskPrompt fills the Q&A template. Placeholders are replaced in a single pass,
// so user input containing "{question}" is left alone.
func buildAskPrompt(name, question string) string {
	r := strings.NewReplacer("{name}", name, "{question}", question)
	return r.Replace(strings.TrimSpace(askPrompt))
}

// prepareImage downscales the image before it is uploaded to a provider.
func prepareImage(imageData []byte) ([]byte, error) {
	resized, err := ResizeImage(imageData, constants.MaxLLMImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	return resized, nil
}

func imageDataURL(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}

// ExtractName pulls the celebrity name out of an identification response. It looks for
// the first line starting with "-**Full Name**" (case-insensitive) and returns the text
// between the first and second colon. Returns "Unknown" when no such line exists.
func ExtractName(content string) string {
	for line := range strings.Lines(content) {
		line = strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(strings.ToLower(line), fullNamePrefix) {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			return constants.UnknownCelebrity
		}
		return strings.TrimSpace(parts[1])
	}
	return constants.UnknownCelebrity
}
