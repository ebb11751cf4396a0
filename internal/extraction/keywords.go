package extraction

import (
	"strings"
)

var (
	techWords     = []string{"javascript", "python", "react", "coding", "programming", "web", "api", "database", "sql", "html", "css", "node", "git", "docker", "aws"}
	businessWords = []string{"business", "marketing", "sales", "strategy", "startup", "finance"}
	designWords   = []string{"design", "ui", "ux", "figma", "photoshop", "creative"}
)

// nestedProfile is the raw shape both the LLM and the keyword analysis produce.
type nestedProfile struct {
	IdentityTraits struct {
		Name        string   `json:"name"`
		Age         string   `json:"age"`
		Location    string   `json:"location"`
		Profession  string   `json:"profession"`
		Personality []string `json:"personality"`
	} `json:"identityTraits"`
	Preferences struct {
		Topics             []string `json:"topics"`
		CommunicationStyle string   `json:"communication_style"`
		LearningStyle      string   `json:"learning_style"`
	} `json:"preferences"`
	Interests     []string `json:"interests"`
	FactualMemory struct {
		Projects    []string `json:"projects"`
		Skills      []string `json:"skills"`
		Tools       []string `json:"tools"`
		Experiences []string `json:"experiences"`
	} `json:"factualMemory"`
}

// keywordProfile derives a raw profile from plain keyword matches when no LLM answer is usable.
func keywordProfile(userMessages []string, conversations []Conversation) nestedProfile {
	text := strings.ToLower(strings.Join(userMessages, " "))
	titles := make([]string, 0, len(conversations))
	for _, c := range conversations {
		titles = append(titles, c.Title)
	}
	titleText := strings.ToLower(strings.Join(titles, " "))

	var found []string
	for _, group := range [][]string{techWords, businessWords, designWords} {
		for _, w := range group {
			if strings.Contains(text, w) || strings.Contains(titleText, w) {
				found = append(found, titleCase(w))
			}
		}
	}

	var p nestedProfile
	p.IdentityTraits.Name = "Unknown"
	p.IdentityTraits.Age = "Unknown"
	p.IdentityTraits.Location = "Unknown"
	p.IdentityTraits.Profession = profession(text)
	p.IdentityTraits.Personality = []string{"curious", "analytical", "tech-savvy"}
	p.Preferences.CommunicationStyle = "conversational"
	p.Preferences.LearningStyle = "hands-on"
	p.FactualMemory.Projects = []string{}
	p.FactualMemory.Experiences = []string{}

	if len(found) > 0 {
		p.Preferences.Topics = found[:min(len(found), 6)]
		p.Interests = found
		p.FactualMemory.Skills = found[:min(len(found), 5)]
	} else {
		p.Preferences.Topics = []string{"Technology", "Programming"}
		p.Interests = []string{"Web Development", "Technology"}
		p.FactualMemory.Skills = []string{"Problem Solving"}
	}

	p.FactualMemory.Tools = []string{}
	for _, w := range techWords {
		if len(p.FactualMemory.Tools) == 5 {
			break
		}
		if strings.Contains(text, w) {
			p.FactualMemory.Tools = append(p.FactualMemory.Tools, titleCase(w))
		}
	}
	return p
}

func profession(text string) string {
	switch {
	case containsAny(text, "code", "programming", "javascript", "python"):
		return "Software Developer"
	case containsAny(text, "design", "ui", "ux"):
		return "Designer"
	case containsAny(text, "business", "marketing"):
		return "Business Professional"
	default:
		return "Unknown"
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter; every keyword is a single ASCII word.
func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
