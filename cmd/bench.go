package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/calc/internal/metrics"
	"yqhp/calc/pkg/logger"
)

var (
	benchIterations int
	benchJSON       bool
)

// benchCmd 反复对文件中的行求值并统计耗时
var benchCmd = &cobra.Command{
	Use:   "bench <file>",
	Short: "统计求值耗时",
	Long: `逐行读取文件 (空行和以 # 开头的行被忽略)，
每轮在新会话中按顺序求值所有行，重复 --iterations 轮，输出单行耗时分布。`,
	Example: `  calc bench lines.txt
  calc bench -n 10000 --json lines.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVarP(&benchIterations, "iterations", "n", 0, "迭代轮数 (覆盖 bench.iterations)")
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "以 JSON 输出统计")
}

// BenchReport 基准测试结果
type BenchReport struct {
	Lines      int
	Iterations int
	Errors     int64
	Elapsed    time.Duration
	Latency    metrics.Summary
}

func runBench(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	lines, err := readBenchLines(f)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s 中没有可求值的行", args[0])
	}

	iterations := appConfig.Bench.Iterations
	if benchIterations > 0 {
		iterations = benchIterations
	}

	report, err := bench(lines, iterations)
	if err != nil {
		return err
	}
	logger.Debug("bench finished",
		zap.Int("lines", report.Lines),
		zap.Int("iterations", report.Iterations),
		zap.Duration("elapsed", report.Elapsed),
	)

	printBenchReport(cmd.OutOrStdout(), report, benchJSON)
	return nil
}

func readBenchLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return lines, nil
}

func bench(lines []string, iterations int) (*BenchReport, error) {
	recorder := metrics.NewLatencyRecorder()
	report := &BenchReport{Lines: len(lines), Iterations: iterations}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		sess, err := newSession()
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			r := sess.Eval(line)
			recorder.Record(r.Duration)
			if r.HasErrors() {
				report.Errors++
			}
		}
	}
	report.Elapsed = time.Since(start)
	report.Latency = recorder.Summary()
	return report, nil
}

func printBenchReport(w io.Writer, report *BenchReport, asJSON bool) {
	if asJSON {
		latency := make(map[string]any)
		for k, v := range report.Latency.Format() {
			latency[k] = v
		}
		fmt.Fprintln(w, oj.JSON(map[string]any{
			"lines":       int64(report.Lines),
			"iterations":  int64(report.Iterations),
			"evaluations": report.Latency.Count,
			"errors":      report.Errors,
			"elapsed_ms":  float64(report.Elapsed) / float64(time.Millisecond),
			"latency_ms":  latency,
		}, &ojg.Options{Sort: true}))
		return
	}

	s := report.Latency
	fmt.Fprintf(w, "lines: %d  iterations: %d  evaluations: %d  errors: %d  elapsed: %s\n",
		report.Lines, report.Iterations, s.Count, report.Errors, report.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "latency: min=%s avg=%s med=%s p(90)=%s p(99)=%s max=%s\n",
		s.Min, s.Mean, s.P50, s.P90, s.P99, s.Max)
}
