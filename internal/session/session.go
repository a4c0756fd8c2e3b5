// Package session 将符号表与求值器组合为可在多个前端之间共享的计算会话
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yqhp/calc/internal/expression"
	"yqhp/calc/internal/symtab"
	"yqhp/calc/pkg/logger"
)

// Result 单行求值结果
type Result struct {
	Line        string                  `json:"line"`
	Value       int64                   `json:"result"`
	Diagnostics []expression.Diagnostic `json:"-"`
	Duration    time.Duration           `json:"-"`
}

// HasErrors 是否包含错误级别的诊断
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == expression.SeverityError {
			return true
		}
	}
	return false
}

// Messages 按顺序返回诊断文本，形如 "error: divide by zero"
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

// Session 计算会话。同一会话内的求值串行执行，保证一行内的查找与赋值是原子的。
type Session struct {
	ID string

	mu        sync.Mutex
	opts      []expression.Option
	table     *symtab.Table
	evaluator *expression.Evaluator
}

// New 创建会话
func New(opts ...expression.Option) *Session {
	s := &Session{
		ID:   uuid.New().String(),
		opts: opts,
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.table = symtab.New()
	s.evaluator = expression.NewEvaluator(s.table, s.opts...)
}

// Eval 求值一行
func (s *Session) Eval(line string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	collector := expression.NewCollector()
	var r expression.Reporter = collector
	debug := logger.IsDebugEnabled()
	if debug {
		r = expression.Tee(collector, logger.Reporter(zap.String("session", s.ID)))
	}

	start := time.Now()
	value := s.evaluator.EvaluateWith(line, r)
	result := Result{
		Line:        line,
		Value:       value,
		Diagnostics: collector.Diagnostics(),
		Duration:    time.Since(start),
	}

	if debug {
		logger.Debug("line evaluated",
			zap.String("session", s.ID),
			zap.String("line", line),
			zap.Int64("result", value),
			zap.Int("diagnostics", len(result.Diagnostics)),
			zap.Duration("duration", result.Duration),
		)
	}
	return result
}

// Lookup 查询变量
func (s *Session) Lookup(name string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Lookup(name)
}

// Variables 按定义顺序返回全部变量
func (s *Session) Variables() []symtab.Variable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Variables()
}

// Reset 清空全部变量
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	logger.Debug("session reset", zap.String("session", s.ID))
}
