package cmd

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"yqhp/calc/api/rest"
	"yqhp/calc/api/rest/client"
)

var (
	evalJSON   bool
	evalServer string
)

// evalCmd 对参数中的每一行依次求值，变量在行与行之间保留
var evalCmd = &cobra.Command{
	Use:   "eval <line>...",
	Short: "对给定的行求值",
	Example: `  calc eval "2 + 3 * 4"
  calc eval "x = 5" "x * x" --json
  calc eval --server http://localhost:8080 "y = y + 1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "以 JSON 输出结果")
	evalCmd.Flags().StringVar(&evalServer, "server", "", "在远程 calc serve 实例上求值")
}

func runEval(cmd *cobra.Command, args []string) error {
	results, err := evalLines(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if evalJSON {
		list := make([]any, 0, len(results))
		for _, r := range results {
			list = append(list, evalResultJSON(r))
		}
		fmt.Fprintln(out, oj.JSON(list, &ojg.Options{Sort: true}))
		return nil
	}

	for _, r := range results {
		for _, d := range r.Diagnostics {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.Severity, d.Message)
		}
		fmt.Fprintln(out, r.Result)
	}
	return nil
}

// evalLines 在本地会话或远程服务上求值
func evalLines(lines []string) ([]rest.EvalResponse, error) {
	results := make([]rest.EvalResponse, 0, len(lines))

	if evalServer != "" {
		c := newClient(evalServer)
		defer c.Close()
		for _, line := range lines {
			resp, err := c.Eval(line)
			if err != nil {
				return nil, err
			}
			results = append(results, *resp)
		}
		return results, nil
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		results = append(results, rest.NewEvalResponse(sess.ID, sess.Eval(line)))
	}
	return results, nil
}

func evalResultJSON(r rest.EvalResponse) map[string]any {
	diags := make([]any, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		diags = append(diags, d.Severity+": "+d.Message)
	}
	return map[string]any{
		"line":        r.Line,
		"result":      r.Result,
		"diagnostics": diags,
	}
}

func newClient(url string) *client.Client {
	cfg := client.DefaultConfig()
	cfg.ServerURL = url
	return client.NewClient(cfg)
}
