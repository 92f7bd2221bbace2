// Package logger 封装 logrus，统一对话引擎各组件的日志格式
//
// 各组件通过 Named("HistoryPanel") 获取带 component 字段的入口，
// 输出格式为：[timestamp] [LEVEL] [component] message fields。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry 暴露底层类型，避免调用方直接依赖 logrus 包
type Entry = logrus.Entry

// Fields 日志附加字段
type Fields = logrus.Fields

// DefaultLogPath 默认日志文件路径
const DefaultLogPath = "logs/dialogue.log"

var rootLogger = logrus.StandardLogger()

// Configure 设置全局日志格式与级别
//
// 参数：
//   - verbose: true 时输出 Debug 级别日志，false 时只输出 Warn 及以上
func Configure(verbose bool) {
	root().SetFormatter(PlainFormatter{})
	if verbose {
		root().SetLevel(logrus.DebugLevel)
	} else {
		root().SetLevel(logrus.WarnLevel)
	}
}

// SetupFile 将全局日志输出重定向到指定路径（默认 logs/dialogue.log）
// 返回底层文件的 closer 以便调用方清理
func SetupFile(logPath string) (io.Closer, string, error) {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	root().SetOutput(f)
	return f, logPath, nil
}

// SetOutput 修改全局日志输出目标（终端宿主用 io.Discard 避免破坏画面）
func SetOutput(w io.Writer) {
	root().SetOutput(w)
}

// SetRoot 覆盖全局 logger，传入 nil 时重置为标准 logger
func SetRoot(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	rootLogger = l
}

// Named 为指定组件创建入口，统一 component 字段
func Named(component string) *Entry {
	entry := logrus.NewEntry(root())
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

func root() *logrus.Logger {
	if rootLogger == nil {
		rootLogger = logrus.StandardLogger()
	}
	return rootLogger
}

// PlainFormatter 统一输出格式：[timestamp] [LEVEL] [component] message fields
type PlainFormatter struct{}

// Format 实现 logrus Formatter
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	parts := make([]string, 0, 5)
	parts = append(parts, fmt.Sprintf("[%s]", entry.Time.UTC().Format(time.RFC3339Nano)))
	parts = append(parts, fmt.Sprintf("[%s]", strings.ToUpper(entry.Level.String())))
	if component, ok := entry.Data["component"].(string); ok && component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	parts = append(parts, entry.Message)
	if fields := formatFields(entry.Data); fields != "" {
		parts = append(parts, fields)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "component" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
