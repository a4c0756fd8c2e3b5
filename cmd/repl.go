package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"yqhp/calc/internal/session"
)

const (
	replBanner = "Jody's little calculator (type 'quit' to exit)"
	replHelp   = `
Type math stuff and get answers!
Supports: +, -, /, *, ^, %, (), integers only
Operators are applied left to right: 2 + 3 * 4 is 20.
Assign with 'name = expr', compare with == != < > <= >= (result 1 or 0).
For example, type in:
123 + 321
You'll get the answer:
444

Type 'vars' to list variables, 'quit' to exit the program.
`
)

// replCmd 是 repl 子命令，与不带子命令运行 calc 相同
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "交互式求值 (默认命令)",
	Long: `逐行读取标准输入并求值，结果写到标准输出，诊断信息写到标准错误。

内置命令：
  help  显示帮助
  vars  列出变量
  quit  退出`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	return repl(sess, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), !quiet)
}

// repl 读取到 quit 或输入结束为止
func repl(sess *session.Session, in io.Reader, out, errOut io.Writer, banner bool) error {
	if banner {
		fmt.Fprintf(errOut, "%s\n\n", replBanner)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch line {
		case "":
			continue
		case "quit":
			return nil
		case "help":
			fmt.Fprint(errOut, replHelp)
			continue
		case "vars":
			for _, v := range sess.Variables() {
				fmt.Fprintf(out, "%s = %d\n", v.Name, v.Value)
			}
			continue
		}

		result := sess.Eval(line)
		printDiagnostics(errOut, result)
		fmt.Fprintln(out, result.Value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("读取输入失败: %w", err)
	}
	return nil
}

func printDiagnostics(w io.Writer, r session.Result) {
	for _, msg := range r.Messages() {
		fmt.Fprintln(w, msg)
	}
}
