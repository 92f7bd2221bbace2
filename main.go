package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/dialogue/pkg/app"
	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/embedded"
	"github.com/decker502/dialogue/pkg/game"
	"github.com/decker502/dialogue/pkg/logger"
	"github.com/decker502/dialogue/pkg/render"
	"github.com/decker502/dialogue/pkg/script"
)

const (
	defaultConfigPath = "data/dialogue.yaml"
	defaultScriptPath = "assets/scripts/demo.yaml"
)

var (
	// 命令行参数
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "对话配置文件（YAML/TOML），为空使用内置配置")
	scriptPath = flag.String("script", defaultScriptPath, "对话脚本，assets/ 开头时从内置资源读取")
	logPath    = flag.String("log", "", "日志文件路径，为空输出到标准错误")
)

func main() {
	flag.Parse()

	logger.Configure(*verbose)
	if *logPath != "" {
		closer, path, err := logger.SetupFile(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "日志文件创建失败: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()
		logger.Named("Main").WithField("path", path).Info("Logging to file")
	}
	log := logger.Named("Main")

	store := embedded.New(assetsFS, dataFS)

	dialogueCfg, err := loadConfig(store, *configPath)
	if err != nil {
		log.WithError(err).Fatal("对话配置加载失败")
	}
	sc, err := loadScript(store, *scriptPath)
	if err != nil {
		log.WithError(err).Fatal("对话脚本加载失败")
	}

	// gdata 初始化失败时降级为仅内存设置
	var settingsStore *gdata.Manager
	if m, err := gdata.Open(gdata.Config{AppName: "dialogue"}); err != nil {
		log.WithError(err).Warn("gdata 初始化失败，设置将不会保存")
	} else {
		settingsStore = m
	}
	settings := game.NewSettingsManager(settingsStore)

	gameApp, err := app.NewApp(app.Config{
		Dialogue: dialogueCfg,
		Script:   sc,
		Settings: settings,
	})
	if err != nil {
		log.WithError(err).Fatal("应用初始化失败")
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(render.ScreenWidth, render.ScreenHeight)
	ebiten.SetWindowTitle("Dialogue - " + sc.Title)
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.WithError(err).Error("Game loop exited with error")
	}
}

// loadConfig 优先读取外部配置文件，否则使用内置配置
func loadConfig(store *embedded.Store, path string) (*config.DialogueConfig, error) {
	if path != "" {
		return config.Load(path)
	}
	return store.LoadConfig(defaultConfigPath)
}

// loadScript 按路径前缀从内置资源或文件系统读取脚本
func loadScript(store *embedded.Store, path string) (*script.Script, error) {
	if strings.HasPrefix(path, "assets/") && store.Exists(path) {
		return store.LoadScript(path)
	}
	return script.Load(path)
}
