package extraction

import (
	"LLMBridge/internal/apperr"

	"github.com/tidwall/gjson"
)

// ValueKind tells an absent extractor field apart from text and list values.
type ValueKind int

const (
	Absent ValueKind = iota
	Text
	List
)

// RawValue is one field of extractor output before normalization.
type RawValue struct {
	Kind ValueKind
	Text string
	List []string
}

// RawProfile 是提取器输出的中间表示，字段均可缺失。
// Nested 字段对应 identityTraits/preferences/factualMemory 结构，
// Flat 保存已经是规范字段名的键，优先级更高。
type RawProfile struct {
	Profession         RawValue
	Location           RawValue
	Skills             RawValue
	CommunicationStyle RawValue
	LearningStyle      RawValue
	WorkStyle          RawValue
	Topics             RawValue
	Interests          RawValue
	Projects           RawValue
	Tools              RawValue
	Experiences        RawValue

	Flat map[string]RawValue
}

var nestedPaths = map[string]func(*RawProfile) *RawValue{
	"identityTraits.profession":       func(r *RawProfile) *RawValue { return &r.Profession },
	"identityTraits.location":         func(r *RawProfile) *RawValue { return &r.Location },
	"factualMemory.skills":            func(r *RawProfile) *RawValue { return &r.Skills },
	"preferences.communication_style": func(r *RawProfile) *RawValue { return &r.CommunicationStyle },
	"preferences.learning_style":      func(r *RawProfile) *RawValue { return &r.LearningStyle },
	"preferences.work_style":          func(r *RawProfile) *RawValue { return &r.WorkStyle },
	"preferences.topics":              func(r *RawProfile) *RawValue { return &r.Topics },
	"interests":                       func(r *RawProfile) *RawValue { return &r.Interests },
	"factualMemory.projects":          func(r *RawProfile) *RawValue { return &r.Projects },
	"factualMemory.tools":             func(r *RawProfile) *RawValue { return &r.Tools },
	"factualMemory.experiences":       func(r *RawProfile) *RawValue { return &r.Experiences },
}

var flatKeys = []string{
	"role", "location", "expertise", "communication", "learning",
	"workStyle", "questions", "projects", "tools", "constraints",
}

// ParseRaw reads extractor output. Anything that is not a JSON object is a validation error.
func ParseRaw(data []byte) (RawProfile, error) {
	if !gjson.ValidBytes(data) {
		return RawProfile{}, apperr.Validationf("parse raw profile", "output is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return RawProfile{}, apperr.Validationf("parse raw profile", "output is not a JSON object")
	}

	var raw RawProfile
	for path, field := range nestedPaths {
		*field(&raw) = readValue(root.Get(path))
	}

	raw.Flat = make(map[string]RawValue)
	for _, key := range flatKeys {
		if v := readValue(root.Get(key)); v.Kind != Absent {
			raw.Flat[key] = v
		}
	}
	return raw, nil
}

func readValue(res gjson.Result) RawValue {
	switch {
	case !res.Exists(), res.Type == gjson.Null:
		return RawValue{}
	case res.IsArray():
		// 元素按原样保留：字符串不做修剪，其他值保留 JSON 文本，只跳过 null。
		list := make([]string, 0)
		for _, item := range res.Array() {
			switch item.Type {
			case gjson.Null:
			case gjson.String:
				list = append(list, item.Str)
			default:
				list = append(list, item.Raw)
			}
		}
		return RawValue{Kind: List, List: list}
	case res.Type == gjson.String:
		return RawValue{Kind: Text, Text: res.Str}
	case res.Type == gjson.Number, res.Type == gjson.True, res.Type == gjson.False:
		return RawValue{Kind: Text, Text: res.Raw}
	default:
		// 对象无法表示为文本。
		return RawValue{}
	}
}
