// Package cmd 提供 calc CLI 的命令实现
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"yqhp/calc/internal/config"
	"yqhp/calc/internal/session"
	"yqhp/calc/pkg/logger"
)

const (
	// Version 是当前版本号
	Version = "0.1.0"
	// Banner 是 version 命令显示的 ASCII 艺术
	Banner = `
   ___  __ _ | |  ___
  / __|/ _' || | / __|   calc %s
 | (__| (_| || || (__    integer line calculator
  \___|\__,_||_| \___|
`
)

var (
	// 全局配置
	cfgFile   string
	debug     bool
	quiet     bool
	overrides []string

	// appConfig 在 PersistentPreRunE 中加载
	appConfig *config.Config
)

// rootCmd 是根命令，不带子命令时进入交互模式
var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "整数行计算器",
	Long: `calc 是一个按行求值的整数计算器。
运算符没有优先级，从左到右依次计算；括号是唯一的分组方式；
支持变量赋值 (x = 1 + 2) 和比较运算 (结果为 0 或 1)。`,
	Version:           Version,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runREPL,
}

// Execute 执行根命令
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "静默模式")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "覆盖配置项 (可多次指定)，格式: engine.max_line=80")

	// 禁用默认的 completion 命令
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetVersionTemplate(fmt.Sprintf(Banner, Version) + "\n")
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig 按 默认值 < 配置文件 < 环境变量 < --set 的顺序加载配置并初始化日志
func loadConfig(cmd *cobra.Command, args []string) error {
	cmdArgs := make(map[string]string, len(overrides))
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("无效的 --set 参数 %q，格式应为 key=value", kv)
		}
		cmdArgs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	cfg, err := config.NewLoader().
		WithConfigPath(cfgFile).
		WithCmdArgs(cmdArgs).
		Load()
	if err != nil {
		return err
	}

	switch {
	case debug:
		cfg.Logging.Level = "debug"
	case quiet:
		cfg.Logging.Level = "error"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.LoggerConfig())
	appConfig = cfg
	return nil
}

// newSession 按当前配置创建会话
func newSession() (*session.Session, error) {
	opts, err := appConfig.EvaluatorOptions()
	if err != nil {
		return nil, err
	}
	return session.New(opts...), nil
}
