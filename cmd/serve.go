package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/calc/api/rest"
	"yqhp/calc/pkg/logger"
)

var serveAddress string

// serveCmd 启动 HTTP 服务，所有请求共享一个会话
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP API 服务",
	Long: `启动 HTTP API 服务：
  GET    /health
  POST   /api/v1/eval        {"line": "x = 1 + 2"}
  GET    /api/v1/variables
  DELETE /api/v1/variables`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "监听地址 (覆盖 server.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	serverCfg := appConfig.Server
	if serveAddress != "" {
		serverCfg.Address = serveAddress
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	server := rest.NewServer(sess, &rest.Config{
		Address:          serverCfg.Address,
		ReadTimeout:      serverCfg.ReadTimeout,
		WriteTimeout:     serverCfg.WriteTimeout,
		EnableCORS:       serverCfg.EnableCORS,
		EnableRequestLog: !quiet,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("calc server starting",
		zap.String("address", serverCfg.Address),
		zap.String("session", sess.ID),
	)
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "calc %s listening on %s\n", Version, serverCfg.Address)
	}

	if err := server.StartWithContext(ctx); err != nil {
		return fmt.Errorf("服务运行失败: %w", err)
	}
	logger.Info("calc server stopped")
	return nil
}
