package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"LLMBridge/internal/apperr"
)

// UnknownValue 是归一化时缺失字段的占位值。
const UnknownValue = "Unknown"

// MemoryProfile 是从对话导出中提取出的用户画像。
// 所有字段都是必填的；编辑时整体替换，不做部分更新。
type MemoryProfile struct {
	Role          string   `json:"role"`          // 职业角色
	Location      string   `json:"location"`      // 所在地
	Expertise     string   `json:"expertise"`     // 专长领域
	Communication string   `json:"communication"` // 沟通风格
	Learning      string   `json:"learning"`      // 学习方式
	WorkStyle     string   `json:"workStyle"`     // 工作方式
	Interests     []string `json:"interests"`     // 兴趣列表，保持插入顺序
	Questions     string   `json:"questions"`     // 常见提问模式
	Projects      string   `json:"projects"`      // 当前项目
	Tools         string   `json:"tools"`         // 常用工具
	Constraints   string   `json:"constraints"`   // 约束条件
}

// profileTextFields lists the JSON keys of every text-typed field.
var profileTextFields = []string{
	"role", "location", "expertise", "communication", "learning",
	"workStyle", "questions", "projects", "tools", "constraints",
}

// ProfileFieldNames returns every JSON key of MemoryProfile in declaration order.
func ProfileFieldNames() []string {
	names := make([]string, 0, len(profileTextFields)+1)
	names = append(names, profileTextFields[:6]...)
	names = append(names, "interests")
	names = append(names, profileTextFields[6:]...)
	return names
}

// Validate checks the invariants a decoded profile must satisfy before rendering.
// Text fields cannot be told apart from empty strings once decoded, so the only
// detectable missing field on a struct value is a nil interests slice.
func (p MemoryProfile) Validate() error {
	if p.Interests == nil {
		return apperr.Validationf("validate profile", "missing required field: interests")
	}
	return nil
}

// Clone returns a deep copy so callers can hand profiles across goroutines.
func (p MemoryProfile) Clone() MemoryProfile {
	c := p
	if p.Interests != nil {
		c.Interests = append(make([]string, 0, len(p.Interests)), p.Interests...)
	}
	return c
}

// DecodeProfile strictly decodes a JSON object into a MemoryProfile.
// Every key must be present and carry the declared type; an explicitly empty
// string is valid text.
func DecodeProfile(data []byte) (MemoryProfile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return MemoryProfile{}, apperr.Validationf("decode profile", "profile must be a JSON object")
	}

	var missing, mistyped []string
	for _, name := range ProfileFieldNames() {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			missing = append(missing, name)
			continue
		}
		if name == "interests" {
			var list []string
			if err := json.Unmarshal(raw, &list); err != nil {
				mistyped = append(mistyped, name)
			}
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			mistyped = append(mistyped, name)
		}
	}

	if len(missing) > 0 || len(mistyped) > 0 {
		sort.Strings(missing)
		sort.Strings(mistyped)
		var parts []string
		if len(missing) > 0 {
			parts = append(parts, "missing required fields: "+strings.Join(missing, ", "))
		}
		if len(mistyped) > 0 {
			parts = append(parts, "wrong field types: "+strings.Join(mistyped, ", "))
		}
		return MemoryProfile{}, apperr.Validationf("decode profile", "%s", strings.Join(parts, "; "))
	}

	var p MemoryProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return MemoryProfile{}, apperr.Validationf("decode profile", "%v", err)
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return p, nil
}

// String 不输出画像内容，避免在日志中泄露个人信息。
func (p MemoryProfile) String() string {
	return fmt.Sprintf("MemoryProfile{interests:%d}", len(p.Interests))
}
