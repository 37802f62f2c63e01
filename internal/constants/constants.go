// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face detection constants
const (
	// DetectScaleFactor is the scale step between cascade window sizes
	DetectScaleFactor = 1.1

	// DetectShiftFactor is the window shift relative to its size
	DetectShiftFactor = 0.1

	// DetectMinFaceSize is the smallest face (in pixels) the cascade looks for
	DetectMinFaceSize = 20

	// DetectIoUThreshold is the overlap above which raw detections are merged
	DetectIoUThreshold = 0.2

	// DetectQualityThreshold is the minimum detection score for a face to be kept
	DetectQualityThreshold = 5.0

	// BoxThickness is the outline width of the drawn face box in pixels
	BoxThickness = 3

	// AnnotatedJPEGQuality is the quality used when re-encoding annotated images
	AnnotatedJPEGQuality = 95

	// MaxImagePixels caps the declared width*height of an image before it is decoded
	MaxImagePixels = 40_000_000
)

// LLM request constants
const (
	// IdentifyTemperature is the sampling temperature for celebrity identification
	IdentifyTemperature = 0.2

	// AskTemperature is the sampling temperature for follow-up questions
	AskTemperature = 0.3

	// MaxCompletionTokens is the completion limit for both identify and ask requests
	MaxCompletionTokens = 1024

	// MaxLLMImageSize is the maximum dimension (width or height) of images sent to the LLM
	MaxLLMImageSize = 1024
)

// Fallback messages shown to the user
const (
	// UnknownCelebrity is returned as info when identification fails
	UnknownCelebrity = "Unknown"

	// NoFaceDetected replaces the info text when the detector finds no face
	NoFaceDetected = "No face detected! Please try another image."

	// AnswerNotFound is returned when the Q&A call fails
	AnswerNotFound = "Sorry! I couldn't find the answer"
)
