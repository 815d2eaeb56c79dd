package scene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/moodreel/moodreel/lib/anilist"
	"github.com/moodreel/moodreel/lib/trace"
	"github.com/moodreel/moodreel/lib/validation"
	"github.com/moodreel/moodreel/models"
)

// minSimilarity is the fingerprint confidence below which a match is treated
// as unreliable and the vision fallback kicks in.
const minSimilarity = 0.87

// chatModel is the model name on the DeepSeek-compatible endpoint.
const chatModel = "deepseek-chat"

// ErrNoMatch is returned when neither the fingerprint provider nor the
// inference fallback produced a usable identification.
var ErrNoMatch = errors.New("no scene match found")

// Result is the outcome of one identification.
type Result struct {
	SessionID   string              `json:"session_id"`
	Source      string              `json:"source"` // "fingerprint" or "inference"
	Title       string              `json:"title"`
	MediaType   string              `json:"media_type"`
	LocalID     string              `json:"local_id,omitempty"`
	Episode     int                 `json:"episode,omitempty"`
	FromSec     float64             `json:"from_sec,omitempty"`
	ToSec       float64             `json:"to_sec,omitempty"`
	Similarity  float64             `json:"similarity,omitempty"`
	Confidence  float64             `json:"confidence,omitempty"`
	Explanation string              `json:"explanation,omitempty"`
	Item        *models.ContentItem `json:"item,omitempty"`
}

// sceneGuess mirrors validation.SceneGuessSchema.
type sceneGuess struct {
	Title       string  `json:"title"`
	MediaType   string  `json:"media_type"`
	Year        int     `json:"year"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Session is the per-request identification scope. One is constructed for
// each upload; nothing identification-related lives in process-wide state.
type Session struct {
	ID        string
	StartedAt time.Time
}

func newSession() Session {
	return Session{ID: uuid.NewString(), StartedAt: time.Now()}
}

// Identifier answers "what is this scene" for an uploaded frame. The
// fingerprint provider is tried first; low-similarity or failed lookups fall
// through to a vision description plus a structured chat guess.
type Identifier struct {
	trace   *trace.Client
	anilist *anilist.Client
	gemini  *genai.Client
	chat    *openai.Client
	logger  *slog.Logger
}

func NewIdentifier(traceClient *trace.Client, anilistClient *anilist.Client, gemini *genai.Client, chat *openai.Client, logger *slog.Logger) *Identifier {
	return &Identifier{
		trace:   traceClient,
		anilist: anilistClient,
		gemini:  gemini,
		chat:    chat,
		logger:  logger,
	}
}

// Identify runs the identification pipeline for one frame.
func (i *Identifier) Identify(ctx context.Context, image []byte, filename string) (*Result, error) {
	session := newSession()
	logger := i.logger.With(slog.String("session", session.ID))

	matches, err := i.trace.Search(ctx, image, filename)
	if err != nil {
		logger.Warn("fingerprint search failed", slog.Any("error", err))
	}

	if len(matches) > 0 && matches[0].Similarity >= minSimilarity {
		return i.fingerprintResult(ctx, session, matches[0], logger), nil
	}

	result, err := i.inferenceResult(ctx, session, image, filename, logger)
	if err != nil {
		logger.Warn("inference fallback failed", slog.Any("error", err))
		return nil, ErrNoMatch
	}
	return result, nil
}

func (i *Identifier) fingerprintResult(ctx context.Context, session Session, match trace.Match, logger *slog.Logger) *Result {
	result := &Result{
		SessionID:  session.ID,
		Source:     "fingerprint",
		Title:      match.Filename,
		MediaType:  "anime",
		LocalID:    fmt.Sprintf("a-%d", match.AnilistID),
		Episode:    match.Episode,
		FromSec:    match.From,
		ToSec:      match.To,
		Similarity: match.Similarity,
	}

	// Resolve the provider id into full metadata; the raw match is still
	// useful when the lookup fails.
	if item, err := i.anilist.GetByID(ctx, match.AnilistID); err != nil {
		logger.Warn("failed to resolve fingerprint match", slog.Any("error", err))
	} else {
		result.Title = item.Title
		result.Item = item
	}

	return result
}

func (i *Identifier) inferenceResult(ctx context.Context, session Session, image []byte, filename string, logger *slog.Logger) (*Result, error) {
	description, err := i.describeFrame(ctx, image, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to describe frame: %w", err)
	}
	logger.Debug("frame described", slog.Int("length", len(description)))

	guess, err := i.guessFromDescription(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("failed to guess from description: %w", err)
	}

	return &Result{
		SessionID:   session.ID,
		Source:      "inference",
		Title:       guess.Title,
		MediaType:   guess.MediaType,
		Confidence:  guess.Confidence,
		Explanation: guess.Explanation,
	}, nil
}

// describeFrame asks the vision model for a detailed description of the frame.
func (i *Identifier) describeFrame(ctx context.Context, image []byte, filename string) (string, error) {
	model := i.gemini.GenerativeModel("gemini-1.5-flash")

	prompt := "Describe this movie or TV frame in detail: setting, characters, " +
		"visual style, any on-screen text, and anything that could identify the production."

	resp, err := model.GenerateContent(ctx, genai.ImageData(imageFormat(filename), image), genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("vision response contained no candidates")
	}

	var description strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			description.WriteString(string(text))
		}
	}
	if description.Len() == 0 {
		return "", fmt.Errorf("vision response contained no text")
	}
	return description.String(), nil
}

// guessFromDescription turns a frame description into a structured guess via
// the chat endpoint. The model's JSON is schema-validated before use.
func (i *Identifier) guessFromDescription(ctx context.Context, description string) (*sceneGuess, error) {
	prompt := fmt.Sprintf(`Based on this description of a single frame, identify the movie, series or anime it most likely comes from.

Description:
%s

Respond with ONLY a JSON object, no other text, with exactly these fields:
- "title": the production's title
- "media_type": "movie", "series" or "anime"
- "year": release year if known, else 0
- "confidence": your confidence from 0 to 1
- "explanation": one sentence on what identified it`, description)

	resp, err := i.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}

	raw := extractJSON(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, fmt.Errorf("chat response contained no JSON object")
	}
	if err := validation.ValidateSceneGuess([]byte(raw)); err != nil {
		return nil, err
	}

	var guess sceneGuess
	if err := json.Unmarshal([]byte(raw), &guess); err != nil {
		return nil, fmt.Errorf("failed to decode scene guess: %w", err)
	}
	return &guess, nil
}

// extractJSON pulls the outermost JSON object out of a completion that may be
// wrapped in prose or markdown fences.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func imageFormat(filename string) string {
	if strings.HasSuffix(strings.ToLower(filename), ".png") {
		return "png"
	}
	return "jpeg"
}
