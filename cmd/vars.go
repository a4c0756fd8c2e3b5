package cmd

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"yqhp/calc/internal/symtab"
)

var (
	varsDefine []string
	varsJSON   bool
	varsServer string
)

// varsCmd 列出变量；本地模式下先依次执行 --define 给出的赋值
var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "列出变量",
	Example: `  calc vars --define "x = 3" --define "y = x ^ 2"
  calc vars --server http://localhost:8080 --json`,
	Args: cobra.NoArgs,
	RunE: runVars,
}

func init() {
	rootCmd.AddCommand(varsCmd)

	varsCmd.Flags().StringArrayVarP(&varsDefine, "define", "D", nil, "先求值的赋值语句 (可多次指定)")
	varsCmd.Flags().BoolVar(&varsJSON, "json", false, "以 JSON 输出")
	varsCmd.Flags().StringVar(&varsServer, "server", "", "列出远程 calc serve 实例的变量")
}

func runVars(cmd *cobra.Command, args []string) error {
	vars, err := collectVariables()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if varsJSON {
		list := make([]any, 0, len(vars))
		for _, v := range vars {
			list = append(list, map[string]any{"name": v.Name, "value": v.Value})
		}
		fmt.Fprintln(out, oj.JSON(list, &ojg.Options{Sort: true}))
		return nil
	}

	for _, v := range vars {
		fmt.Fprintf(out, "%s = %d\n", v.Name, v.Value)
	}
	return nil
}

func collectVariables() ([]symtab.Variable, error) {
	if varsServer != "" {
		c := newClient(varsServer)
		defer c.Close()
		for _, line := range varsDefine {
			if _, err := c.Eval(line); err != nil {
				return nil, err
			}
		}
		resp, err := c.Variables()
		if err != nil {
			return nil, err
		}
		return resp.Variables, nil
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}
	for _, line := range varsDefine {
		if r := sess.Eval(line); r.HasErrors() {
			return nil, fmt.Errorf("%q: %s", line, r.Messages()[len(r.Messages())-1])
		}
	}
	return sess.Variables(), nil
}
