// Package celebrity ties face detection, the LLM provider, the result cache and the
// lookup history together.
package celebrity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/celebrity-detector/internal/ai"
	"github.com/kozaktomas/celebrity-detector/internal/cache"
	"github.com/kozaktomas/celebrity-detector/internal/constants"
	"github.com/kozaktomas/celebrity-detector/internal/database"
	"github.com/kozaktomas/celebrity-detector/internal/facedetect"
	"github.com/kozaktomas/celebrity-detector/internal/logging"
)

var (
	ErrEmptyImage      = errors.New("no image data")
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrHistoryDisabled = errors.New("lookup history is not configured")
)

// Identification is the outcome of an uploaded photo.
type Identification struct {
	ID           uuid.UUID       `json:"id"`
	Info         string          `json:"info"`
	Name         string          `json:"name"`
	Face         *facedetect.Box `json:"face,omitempty"`
	Image        []byte          `json:"-"` // annotated JPEG, nil when no face was found
	FaceDetected bool            `json:"face_detected"`
	Cached       bool            `json:"cached"`
}

// History is a slice of the lookup history.
type History struct {
	Identifications []database.IdentificationRecord
	Questions       []database.QuestionRecord
}

// Options configures a Service. Cache and History are optional.
type Options struct {
	Detector facedetect.Detector
	Provider ai.Provider
	Cache    cache.Cache
	CacheTTL time.Duration
	History  database.HistoryStore
	Logger   logrus.FieldLogger
}

// Service identifies celebrities and answers follow-up questions. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	detector facedetect.Detector
	provider ai.Provider
	cache    cache.Cache
	cacheTTL time.Duration
	history  database.HistoryStore
	logger   logrus.FieldLogger
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		detector: opts.Detector,
		provider: opts.Provider,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		history:  opts.History,
		logger:   logger,
	}
}

// ProviderName returns the model answering requests.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Usage returns the provider's accumulated token usage.
func (s *Service) Usage() ai.Usage {
	return s.provider.GetUsage()
}

// HistoryEnabled reports whether a history store is configured.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Identify detects the largest face in data and asks the provider who it is.
//
// Photos without a detectable face never reach the provider. A failed provider call
// is not an error: Info is "Unknown" and Name is empty.
func (s *Service) Identify(ctx context.Context, data []byte) (*Identification, error) {
	const op = "identify"
	reqID := logging.RequestID(ctx)
	log := logging.WithOperation(s.logger, op, reqID)

	if len(data) == 0 {
		return nil, logging.NewOperationError(op, reqID, ErrEmptyImage)
	}

	res, err := facedetect.Process(s.detector, data)
	if err != nil {
		return nil, logging.NewOperationError(op, reqID, err)
	}

	ident := &Identification{ID: uuid.New()}
	if !res.FaceDetected() {
		log.WithField("bytes", len(data)).Info("no face detected")
		ident.Info = constants.NoFaceDetected
		return ident, nil
	}

	ident.FaceDetected = true
	ident.Face = res.Face
	ident.Image = res.Image
	log = log.WithFields(logrus.Fields{
		"face_x": res.Face.X, "face_y": res.Face.Y,
		"face_w": res.Face.Width, "face_h": res.Face.Height,
	})

	key := cache.IdentificationKey(res.Image)
	if info, ok := s.cachedInfo(ctx, key, log); ok {
		ident.Info = info
		ident.Cached = true
	} else {
		start := time.Now()
		info, err := s.provider.IdentifyCelebrity(ctx, res.Image)
		if err != nil {
			log.WithError(err).WithField("provider", s.provider.Name()).Warn("identification request failed")
			ident.Info = constants.UnknownCelebrity
			return ident, nil
		}
		log.WithField("duration", time.Since(start)).Debug("identification received")
		ident.Info = info
		s.storeInfo(ctx, key, info, log)
	}

	ident.Name = ai.ExtractName(ident.Info)
	log.WithFields(logrus.Fields{"name": ident.Name, "cached": ident.Cached}).Info("celebrity identified")

	s.recordIdentification(ctx, ident, cache.ImageHash(res.Image), log)
	return ident, nil
}

// Ask answers a question about the named celebrity. Provider failures yield the
// fallback answer rather than an error.
func (s *Service) Ask(ctx context.Context, name, question string) (string, error) {
	const op = "ask"
	reqID := logging.RequestID(ctx)
	log := logging.WithOperation(s.logger, op, reqID).WithField("name", name)

	question = strings.TrimSpace(question)
	if question == "" {
		return "", logging.NewOperationError(op, reqID, ErrEmptyQuestion)
	}

	answered := true
	answer, err := s.provider.AskAboutCelebrity(ctx, name, question)
	if err != nil {
		log.WithError(err).WithField("provider", s.provider.Name()).Warn("question request failed")
		answer = constants.AnswerNotFound
		answered = false
	}

	if s.history != nil {
		rec := &database.QuestionRecord{
			Name:     name,
			NameKey:  NormalizeName(name),
			Question: question,
			Answer:   answer,
			Answered: answered,
			Provider: s.provider.Name(),
		}
		if err := s.history.SaveQuestion(ctx, rec); err != nil {
			log.WithError(err).Error("failed to record question")
		}
	}

	return answer, nil
}

// History lists recent lookups, optionally narrowed to one celebrity.
func (s *Service) History(ctx context.Context, name string, limit int) (*History, error) {
	const op = "history"
	reqID := logging.RequestID(ctx)

	if s.history == nil {
		return nil, logging.NewOperationError(op, reqID, ErrHistoryDisabled)
	}

	filter := database.HistoryFilter{NameKey: NormalizeName(name), Limit: limit}
	idents, err := s.history.ListIdentifications(ctx, filter)
	if err != nil {
		return nil, logging.NewOperationError(op, reqID, err)
	}
	questions, err := s.history.ListQuestions(ctx, filter)
	if err != nil {
		return nil, logging.NewOperationError(op, reqID, err)
	}
	return &History{Identifications: idents, Questions: questions}, nil
}

func (s *Service) cachedInfo(ctx context.Context, key string, log logrus.FieldLogger) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	info, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.WithError(err).Warn("cache lookup failed")
		}
		return "", false
	}
	return info, true
}

func (s *Service) storeInfo(ctx context.Context, key, info string, log logrus.FieldLogger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, info, s.cacheTTL); err != nil {
		log.WithError(err).Warn("cache store failed")
	}
}

func (s *Service) recordIdentification(ctx context.Context, ident *Identification, imageHash string, log logrus.FieldLogger) {
	if s.history == nil {
		return
	}
	rec := &database.IdentificationRecord{
		ID:         ident.ID,
		Name:       ident.Name,
		NameKey:    NormalizeName(ident.Name),
		Info:       ident.Info,
		FaceX:      ident.Face.X,
		FaceY:      ident.Face.Y,
		FaceWidth:  ident.Face.Width,
		FaceHeight: ident.Face.Height,
		ImageSHA1:  imageHash,
		Provider:   s.provider.Name(),
		Cached:     ident.Cached,
	}
	if err := s.history.SaveIdentification(ctx, rec); err != nil {
		log.WithError(err).Error("failed to record identification")
	}
}
