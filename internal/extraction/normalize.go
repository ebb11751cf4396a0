package extraction

import (
	"strings"

	"LLMBridge/internal/models"
)

const (
	defaultQuestions   = "Questions about various topics"
	defaultConstraints = "No specific constraints mentioned"
	maxQuestionTopics  = 3
)

// Normalize maps a RawProfile onto the canonical MemoryProfile. It is pure:
// the same input always yields the same profile, and absent values become "Unknown".
func Normalize(raw RawProfile) models.MemoryProfile {
	return models.MemoryProfile{
		Role:          raw.pick("role", raw.Profession),
		Location:      raw.pick("location", raw.Location),
		Expertise:     raw.pick("expertise", raw.Skills),
		Communication: raw.pick("communication", raw.CommunicationStyle),
		Learning:      raw.pick("learning", raw.LearningStyle),
		WorkStyle:     raw.pick("workStyle", raw.WorkStyle),
		Interests:     interests(raw.Interests),
		Questions:     raw.pickOr("questions", questions(raw.Topics)),
		Projects:      raw.pick("projects", raw.Projects),
		Tools:         raw.pick("tools", raw.Tools),
		Constraints:   raw.pickOr("constraints", constraints(raw.Experiences)),
	}
}

// pick 优先使用扁平字段，其次使用嵌套字段。
func (r RawProfile) pick(flatKey string, nested RawValue) string {
	if v, ok := r.Flat[flatKey]; ok {
		if s := asText(v); s != "" {
			return s
		}
	}
	if s := asText(nested); s != "" {
		return s
	}
	return models.UnknownValue
}

func (r RawProfile) pickOr(flatKey, derived string) string {
	if v, ok := r.Flat[flatKey]; ok {
		if s := asText(v); s != "" {
			return s
		}
	}
	return derived
}

// asText renders a value as text; lists are joined with ", ". Empty means unusable.
func asText(v RawValue) string {
	switch v.Kind {
	case Text:
		return strings.TrimSpace(v.Text)
	case List:
		return strings.Join(v.List, ", ")
	default:
		return ""
	}
}

func interests(v RawValue) []string {
	if v.Kind != List {
		return []string{}
	}
	return append(make([]string, 0, len(v.List)), v.List...)
}

func questions(topics RawValue) string {
	if topics.Kind != List || len(topics.List) == 0 {
		return defaultQuestions
	}
	n := min(len(topics.List), maxQuestionTopics)
	return "Questions about " + strings.Join(topics.List[:n], ", ")
}

func constraints(experiences RawValue) string {
	if experiences.Kind != List || len(experiences.List) == 0 {
		return defaultConstraints
	}
	return "Based on experience with " + strings.Join(experiences.List, ", ")
}

// FallbackProfile is the fixed profile returned whenever extraction cannot produce one.
func FallbackProfile() models.MemoryProfile {
	return models.MemoryProfile{
		Role:          models.UnknownValue,
		Location:      models.UnknownValue,
		Expertise:     models.UnknownValue,
		Communication: "conversational",
		Learning:      "hands-on",
		WorkStyle:     models.UnknownValue,
		Interests:     []string{"Web Development"},
		Questions:     "Questions about Technology",
		Projects:      models.UnknownValue,
		Tools:         models.UnknownValue,
		Constraints:   defaultConstraints,
	}
}
