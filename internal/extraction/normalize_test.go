package extraction

import (
	"testing"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, data string) models.MemoryProfile {
	t.Helper()
	raw, err := ParseRaw([]byte(data))
	require.NoError(t, err)
	return Normalize(raw)
}

func TestNormalize_NestedShape(t *testing.T) {
	p := normalize(t, `{
		"identityTraits": {"profession": "Data Engineer", "location": "Berlin"},
		"preferences": {
			"topics": ["Spark", "Airflow", "SQL", "dbt"],
			"communication_style": "concise",
			"learning_style": "by example"
		},
		"interests": ["Streaming", "Lakehouse"],
		"factualMemory": {
			"projects": ["Clickstream pipeline"],
			"skills": ["Go", "SQL"],
			"tools": ["Kafka", "Flink"],
			"experiences": ["fintech", "adtech"]
		}
	}`)

	assert.Equal(t, models.MemoryProfile{
		Role:          "Data Engineer",
		Location:      "Berlin",
		Expertise:     "Go, SQL",
		Communication: "concise",
		Learning:      "by example",
		WorkStyle:     models.UnknownValue,
		Interests:     []string{"Streaming", "Lakehouse"},
		Questions:     "Questions about Spark, Airflow, SQL",
		Projects:      "Clickstream pipeline",
		Tools:         "Kafka, Flink",
		Constraints:   "Based on experience with fintech, adtech",
	}, p)
}

func TestNormalize_MissingFieldsBecomeUnknown(t *testing.T) {
	p := normalize(t, `{"identityTraits": {"profession": "Teacher"}}`)

	assert.Equal(t, "Teacher", p.Role)
	assert.Equal(t, models.UnknownValue, p.Location)
	assert.Equal(t, models.UnknownValue, p.Expertise)
	assert.Equal(t, []string{}, p.Interests)
	assert.Equal(t, "Questions about various topics", p.Questions)
	assert.Equal(t, "No specific constraints mentioned", p.Constraints)
}

func TestNormalize_EmptyValues(t *testing.T) {
	p := normalize(t, `{
		"identityTraits": {"profession": "", "location": null},
		"preferences": {"topics": []},
		"interests": "not a list",
		"factualMemory": {"skills": [], "experiences": []}
	}`)

	assert.Equal(t, models.UnknownValue, p.Role)
	assert.Equal(t, models.UnknownValue, p.Location)
	assert.Equal(t, models.UnknownValue, p.Expertise)
	assert.Equal(t, []string{}, p.Interests)
	assert.Equal(t, "Questions about various topics", p.Questions)
	assert.Equal(t, "No specific constraints mentioned", p.Constraints)
}

func TestNormalize_ScalarsKeepJSONText(t *testing.T) {
	p := normalize(t, `{"identityTraits": {"location": 42}, "factualMemory": {"tools": [true, "vim", 3.5]}}`)

	assert.Equal(t, "42", p.Location)
	assert.Equal(t, "true, vim, 3.5", p.Tools)
}

func TestNormalize_InterestsKeepEntriesVerbatim(t *testing.T) {
	p := normalize(t, `{"interests": ["  Go  ", "", "Rust", {"x":1}, null, 7]}`)

	assert.Equal(t, []string{"  Go  ", "", "Rust", `{"x":1}`, "7"}, p.Interests)
}

func TestNormalize_FlatKeysTakePrecedence(t *testing.T) {
	p := normalize(t, `{
		"role": "Architect",
		"expertise": ["Go", "Kubernetes"],
		"questions": "How to scale?",
		"identityTraits": {"profession": "Developer", "location": "Oslo"},
		"interests": ["Cloud"]
	}`)

	assert.Equal(t, "Architect", p.Role)
	assert.Equal(t, "Oslo", p.Location)
	assert.Equal(t, "Go, Kubernetes", p.Expertise)
	assert.Equal(t, "How to scale?", p.Questions)
	assert.Equal(t, []string{"Cloud"}, p.Interests)
}

func TestNormalize_Deterministic(t *testing.T) {
	data := `{"preferences": {"topics": ["a", "b"]}, "factualMemory": {"skills": ["x"]}}`
	assert.Equal(t, normalize(t, data), normalize(t, data))
}

func TestParseRaw_RejectsNonObjects(t *testing.T) {
	for _, in := range []string{"", "not json", "[1,2]", `"text"`, "{"} {
		_, err := ParseRaw([]byte(in))
		assert.ErrorIs(t, err, apperr.ErrValidation, "input %q", in)
	}
}

func TestFallbackProfile(t *testing.T) {
	p := FallbackProfile()
	require.NoError(t, p.Validate())
	assert.Equal(t, []string{"Web Development"}, p.Interests)
	assert.Equal(t, models.UnknownValue, p.Role)

	// 每次返回独立副本。
	p.Interests[0] = "changed"
	assert.Equal(t, "Web Development", FallbackProfile().Interests[0])
}
