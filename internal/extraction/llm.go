package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/llm"
	"LLMBridge/internal/models"
	"LLMBridge/pkg/logger"

	"github.com/tidwall/gjson"
)

// ErrNoUserMessages is returned when the export holds nothing the user wrote.
var ErrNoUserMessages = errors.New("no user messages found")

const profileSystemPrompt = "You analyze chat histories and describe the user. Respond with JSON only."

const profilePromptTemplate = `Analyze these user messages from ChatGPT conversations to create a user profile.

USER MESSAGES:
%s

CONVERSATION TITLES:
%s

Create a detailed user profile. Respond with ONLY this JSON:

{
  "identityTraits": {
    "name": "extract if mentioned or Unknown",
    "age": "extract if mentioned or Unknown",
    "location": "extract if mentioned or Unknown",
    "profession": "infer from questions/topics",
    "personality": ["list 3-4 traits from communication style"]
  },
  "preferences": {
    "topics": ["list 6-8 main topics user asks about"],
    "communication_style": "describe their style",
    "learning_style": "infer how they prefer to learn",
    "work_style": "infer how they approach their work"
  },
  "interests": ["list 8-12 specific interests from conversations"],
  "factualMemory": {
    "projects": ["any projects mentioned"],
    "skills": ["skills inferred from questions"],
    "tools": ["tools/technologies mentioned"],
    "experiences": ["background mentioned"]
  }
}`

// LLMExtractor reads a conversation export and asks an LLM to describe its author.
// When the LLM answer is unusable it falls back to keyword analysis of the messages.
type LLMExtractor struct {
	reader ArtifactReader
	client llm.LLM
	log    *logger.Logger
}

// NewLLMExtractor builds an LLMExtractor.
func NewLLMExtractor(reader ArtifactReader, client llm.LLM, log *logger.Logger) *LLMExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &LLMExtractor{reader: reader, client: client, log: log}
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, artifactPath string) ([]byte, error) {
	const op = "llm extract"

	data, err := e.reader.ReadArtifact(artifactPath)
	if err != nil {
		return nil, apperr.WrapExternal(op, err)
	}

	conversations, userMessages := ParseConversations(data)
	if len(userMessages) == 0 {
		return nil, apperr.WrapExternal(op, ErrNoUserMessages)
	}

	e.log.WithPayload(map[string]interface{}{
		"conversations": len(conversations),
		"user_messages": len(userMessages),
	}).Debug("conversations parsed")

	out, err := e.askLLM(ctx, userMessages, conversations)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, apperr.WrapExternal(op, ctx.Err())
	}
	e.log.WithError(models.ErrorInfo{Message: err.Error(), Type: "llm_extract"}).
		Warn("llm profile unusable, using keyword analysis")

	out, err = json.Marshal(keywordProfile(userMessages, conversations))
	if err != nil {
		return nil, apperr.WrapExternal(op, err)
	}
	return out, nil
}

func (e *LLMExtractor) askLLM(ctx context.Context, userMessages []string, conversations []Conversation) ([]byte, error) {
	titles, err := json.MarshalIndent(sampleTitles(conversations), "", "  ")
	if err != nil {
		return nil, err
	}

	temperature := float32(0.3)
	req := models.NewTextRequest(profileSystemPrompt, fmt.Sprintf(profilePromptTemplate, sampleMessages(userMessages), titles))
	req.Temperature = &temperature
	req.JSONOutput = true

	resp, err := e.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}

	obj := outermostObject(resp.Text())
	if obj == "" || !gjson.Valid(obj) {
		return nil, fmt.Errorf("response holds no JSON object")
	}
	root := gjson.Parse(obj)
	if !root.Get("identityTraits").Exists() || !root.Get("preferences").Exists() {
		return nil, fmt.Errorf("response lacks identityTraits or preferences")
	}
	return []byte(obj), nil
}

// outermostObject returns the text between the first '{' and the last '}'.
func outermostObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
