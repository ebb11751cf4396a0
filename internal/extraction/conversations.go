package extraction

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	maxConversations = 50
	maxUserMessages  = 100
	maxSampleRunes   = 8000
	maxTitles        = 30
)

// Conversation 是导出文件中的一段对话。
type Conversation struct {
	Title    string
	Messages []Message
}

// Message is a single non-empty message of a conversation.
type Message struct {
	Role    string
	Content string
}

// ParseConversations reads a ChatGPT-style export: a list of conversations, each
// with a "mapping" of nodes whose message carries author.role and content.parts.
// Only the first 50 conversations are read. It returns the conversations with at
// least one message and every user message in document order.
func ParseConversations(data []byte) ([]Conversation, []string) {
	if !gjson.ValidBytes(data) {
		return nil, nil
	}

	root := gjson.ParseBytes(data)
	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.IsObject() && root.Get("mapping").Exists():
		items = []gjson.Result{root}
	default:
		return nil, nil
	}
	if len(items) > maxConversations {
		items = items[:maxConversations]
	}

	var (
		conversations []Conversation
		userMessages  []string
	)
	for _, item := range items {
		mapping := item.Get("mapping")
		if !mapping.IsObject() {
			continue
		}

		title := item.Get("title").String()
		if title == "" {
			title = "Unknown"
		}
		conv := Conversation{Title: title}

		mapping.ForEach(func(_, node gjson.Result) bool {
			msg := node.Get("message")
			if !msg.IsObject() {
				return true
			}
			content := strings.TrimSpace(msg.Get("content.parts.0").String())
			if content == "" {
				return true
			}
			role := msg.Get("author.role").String()
			conv.Messages = append(conv.Messages, Message{Role: role, Content: content})
			if role == "user" {
				userMessages = append(userMessages, content)
			}
			return true
		})

		if len(conv.Messages) > 0 {
			conversations = append(conversations, conv)
		}
	}
	return conversations, userMessages
}

// sampleMessages joins the first user messages and caps the result in runes.
func sampleMessages(messages []string) string {
	if len(messages) > maxUserMessages {
		messages = messages[:maxUserMessages]
	}
	text := strings.Join(messages, "\n")
	if r := []rune(text); len(r) > maxSampleRunes {
		text = string(r[:maxSampleRunes])
	}
	return text
}

func sampleTitles(conversations []Conversation) []string {
	n := min(len(conversations), maxTitles)
	titles := make([]string, 0, n)
	for _, c := range conversations[:n] {
		titles = append(titles, c.Title)
	}
	return titles
}
