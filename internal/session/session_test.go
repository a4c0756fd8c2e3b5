package session

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/calc/internal/expression"
	"yqhp/calc/internal/symtab"
	"yqhp/calc/pkg/logger"
)

func TestSession_Eval(t *testing.T) {
	s := New()
	require.NotEmpty(t, s.ID)

	r := s.Eval("x = 2 + 3 * 4")
	assert.Equal(t, int64(20), r.Value)
	assert.Equal(t, "x = 2 + 3 * 4", r.Line)
	assert.Empty(t, r.Diagnostics)
	assert.False(t, r.HasErrors())

	r = s.Eval("x / 4")
	assert.Equal(t, int64(5), r.Value)

	v, ok := s.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, int64(20), v)
}

func TestSession_Diagnostics(t *testing.T) {
	s := New()

	r := s.Eval("7 / 0")
	assert.Equal(t, int64(0), r.Value)
	require.Len(t, r.Diagnostics, 1)
	assert.True(t, r.HasErrors())
	assert.Equal(t, []string{"error: divide by zero"}, r.Messages())

	r = s.Eval("1 + y")
	assert.True(t, r.HasErrors())
	assert.Equal(t, []string{"error: no such variable: y"}, r.Messages())
}

func TestSession_VariablesAndReset(t *testing.T) {
	s := New()
	s.Eval("b = 2")
	s.Eval("a = 1")
	s.Eval("b = 3")

	assert.Equal(t, []symtab.Variable{{Name: "b", Value: 3}, {Name: "a", Value: 1}}, s.Variables())

	id := s.ID
	s.Reset()
	assert.Empty(t, s.Variables())
	assert.Equal(t, id, s.ID)

	r := s.Eval("a")
	assert.True(t, r.HasErrors())
}

func TestSession_DebugLogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&logger.Config{Level: "debug", Format: "json"}, &buf)
	defer func() {
		logger.Init(nil)
		logger.SetLevelFromString("info")
	}()

	s := New()
	r := s.Eval("7 / 0")
	logger.Sync()

	// The result still carries the diagnostic and the log gets a copy.
	assert.Equal(t, []string{"error: divide by zero"}, r.Messages())
	out := buf.String()
	assert.Contains(t, out, `"msg":"divide by zero"`)
	assert.Contains(t, out, `"kind":"arithmetic"`)
	assert.Contains(t, out, `"session":"`+s.ID+`"`)

	buf.Reset()
	logger.SetLevelFromString("warn")
	s.Eval("7 / 0")
	logger.Sync()
	assert.Empty(t, buf.String())
}

func TestSession_Options(t *testing.T) {
	s := New(expression.WithMaxLine(5))
	assert.Equal(t, int64(3), s.Eval("1 + 2 + 3").Value)

	s.Reset()
	assert.Equal(t, int64(3), s.Eval("1 + 2 + 3").Value)
}

func TestSession_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, New().ID, New().ID)
}

func TestSession_ConcurrentEval(t *testing.T) {
	s := New()
	s.Eval("n = 0")

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				s.Eval("n = n + 1")
				s.Eval(fmt.Sprintf("w = %d", i))
			}
		}(i)
	}
	wg.Wait()

	n, ok := s.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, int64(workers*perWorker), n)
}
