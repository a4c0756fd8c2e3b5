package cmd

import (
	"github.com/spf13/cobra"

	"yqhp/calc/api/mcp"
	"yqhp/calc/pkg/logger"
)

// mcpCmd 通过标准输入输出提供 MCP 工具
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "以 MCP 服务运行 (stdio)",
	Long: `在标准输入输出上运行 MCP 服务，提供以下工具：
  evaluate   对一行求值 (参数 line)
  variables  列出变量
  reset      清空变量`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	logger.Debug("mcp server starting")
	return mcp.NewServer(sess, Version).ServeStdio()
}
