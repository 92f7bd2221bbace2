// Package script 加载线性对话脚本
//
// 脚本只描述按顺序播放的台词和选项，选择后总是进入下一步，
// 不包含分支跳转（对话图的编写与遍历不属于本引擎）。
package script

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step 脚本中的一步
type Step struct {
	Node     string   `yaml:"node"`     // 节点 ID，为空时自动生成 "<脚本ID>.<序号>"
	Speaker  string   `yaml:"speaker"`  // 说话人，可为空
	Text     string   `yaml:"text"`     // 台词；带选项时作为提问显示
	Portrait string   `yaml:"portrait"` // 立绘资源 key，可为空
	Choices  []string `yaml:"choices"`  // 选项文本列表
}

// HasChoices 是否为选项步骤
func (s Step) HasChoices() bool {
	return len(s.Choices) > 0
}

// Script 对话脚本
type Script struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Steps []Step `yaml:"steps"`
}

// Load 从文件加载脚本
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	return s, nil
}

// Parse 解析 YAML 脚本并补齐缺省字段
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script YAML: %w", err)
	}
	if strings.TrimSpace(s.ID) == "" {
		s.ID = "script"
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	for i := range s.Steps {
		if s.Steps[i].Node == "" {
			s.Steps[i].Node = fmt.Sprintf("%s.%d", s.ID, i)
		}
	}
	return &s, nil
}

// Len 返回步骤数
func (s *Script) Len() int {
	return len(s.Steps)
}

func (s *Script) validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %s: at least one step is required", s.ID)
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step.Text) == "" && !step.HasChoices() {
			return fmt.Errorf("step %d: text or choices is required", i)
		}
		for j, c := range step.Choices {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("step %d: choice %d is empty", i, j)
			}
		}
	}
	return nil
}
