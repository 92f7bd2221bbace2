// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go），
// 再通过 New() 包装成 Store 传给需要读取资源的组件。
package embedded

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/script"
)

// Store 按路径前缀在 assets 与 data 两个文件系统之间分发
type Store struct {
	assets fs.FS
	data   fs.FS
}

// New 创建资源存储，任一文件系统可为 nil
func New(assets, data fs.FS) *Store {
	return &Store{assets: assets, data: data}
}

// resolve 根据路径前缀选择文件系统，返回标准化后的路径
// 路径必须以 "assets/" 或 "data/" 开头
func (s *Store) resolve(p string) (fs.FS, string, error) {
	// 标准化路径分隔符为正斜杠（embed.FS 使用正斜杠），移除 "./" 前缀
	p = strings.TrimPrefix(filepath.ToSlash(p), "./")

	var fsys fs.FS
	switch {
	case strings.HasPrefix(p, "assets/"):
		fsys = s.assets
	case strings.HasPrefix(p, "data/"):
		fsys = s.data
	default:
		return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/' or 'data/')", p)
	}
	if fsys == nil {
		return nil, "", fmt.Errorf("no file system mounted for %s", p)
	}
	return fsys, p, nil
}

// Open 打开资源文件
func (s *Store) Open(p string) (fs.File, error) {
	fsys, p, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	return fsys.Open(p)
}

// ReadFile 读取资源文件内容
func (s *Store) ReadFile(p string) ([]byte, error) {
	fsys, p, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, p)
}

// Exists 检查资源文件是否存在
func (s *Store) Exists(p string) bool {
	file, err := s.Open(p)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配资源文件
func (s *Store) Glob(pattern string) ([]string, error) {
	fsys, pattern, err := s.resolve(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, pattern)
}

// LoadConfig 读取嵌入的对话配置，格式由扩展名决定
func (s *Store) LoadConfig(p string) (*config.DialogueConfig, error) {
	data, err := s.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue config %s: %w", p, err)
	}
	cfg, err := config.LoadBytes(data, path.Ext(p))
	if err != nil {
		return nil, fmt.Errorf("invalid dialogue config %s: %w", p, err)
	}
	return cfg, nil
}

// LoadScript 读取嵌入的对话脚本
func (s *Store) LoadScript(p string) (*script.Script, error) {
	data, err := s.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", p, err)
	}
	sc, err := script.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", p, err)
	}
	return sc, nil
}

// Scripts 列出 assets/scripts 下的所有脚本路径
func (s *Store) Scripts() ([]string, error) {
	return s.Glob("assets/scripts/*.yaml")
}
