// Command cetmatch 是学院录取匹配服务的命令行入口。
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/cetmatch/config"
	_ "github.com/rushteam/cetmatch/config/builders"
	"github.com/rushteam/cetmatch/pkg/logging"
)

var (
	configFiles string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "cetmatch",
	Short:         "Match exam candidates to colleges likely to admit them",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFiles, "config", "c", "", "comma separated YAML config files, later files override earlier ones")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 读取 --config 指定的配置文件并应用 --log-level。
func loadConfig() (*config.AppConfig, error) {
	var files []string
	for _, f := range strings.Split(configFiles, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	cfg, err := config.Load(files)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}
