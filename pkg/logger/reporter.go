package logger

import (
	"go.uber.org/zap"

	"yqhp/calc/internal/expression"
)

// Reporter 将表达式诊断写入日志：警告为 warn 级别，错误为 error 级别。
// extra 附加到每条日志上
func Reporter(extra ...zap.Field) expression.Reporter {
	return expression.ReporterFunc(func(d expression.Diagnostic) {
		fields := append([]zap.Field{
			zap.String("kind", d.Err.Kind.String()),
			zap.Int("position", d.Err.Position),
		}, extra...)
		if d.Severity == expression.SeverityWarning {
			Warn(d.Err.Message, fields...)
			return
		}
		Error(d.Err.Message, fields...)
	})
}
