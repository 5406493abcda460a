package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deixis/hcrun/internal/runner"
)

func exited(output string, code int) *runner.Result {
	return &runner.Result{
		Output:  []byte(output),
		Status:  runner.Status{Kind: runner.Exited, Code: code},
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestFormat_Plain(t *testing.T) {
	t.Parallel()

	p := Format(exited("hello\n", 0), []string{"echo", "hello"}, Options{})

	assert.Equal(t, "hello\n", p.Text)
	require.NotNil(t, p.ExitCode)
	assert.Equal(t, uint8(0), *p.ExitCode)
	assert.False(t, p.IsLog())
}

func TestFormat_Failure(t *testing.T) {
	t.Parallel()

	p := Format(exited("failed\n", 5), []string{"sh", "-c", "exit 5"}, Options{})

	assert.Equal(t, "failed\n", p.Text)
	require.NotNil(t, p.ExitCode)
	assert.Equal(t, uint8(5), *p.ExitCode)
}

func TestFormat_LogOnly(t *testing.T) {
	t.Parallel()

	for _, code := range []int{0, 1, 255} {
		p := Format(exited("hello\n", code), []string{"echo"}, Options{LogOnly: true})
		assert.Nil(t, p.ExitCode)
		assert.True(t, p.IsLog())
	}
}

func TestFormat_Detailed(t *testing.T) {
	t.Parallel()

	p := Format(exited("hello\n", 0), []string{"echo", "hello"}, Options{Detailed: true})

	assert.Equal(t, "$ echo hello 2>&1\nhello\n\n\nExit Code: 0\nDuration: 1.5s", p.Text)
}

func TestFormat_DetailedWithEnv(t *testing.T) {
	t.Parallel()

	opts := Options{Detailed: true, Env: []string{"HOME=/root", "PATH=/bin"}}
	p := Format(exited("", 3), []string{"true"}, opts)

	assert.Equal(t, "HOME=/root\nPATH=/bin\n$ true 2>&1\n\n\nExit Code: 3\nDuration: 1.5s", p.Text)
}

func TestFormat_EnvIgnoredWithoutDetailed(t *testing.T) {
	t.Parallel()

	p := Format(exited("out", 0), []string{"true"}, Options{Env: []string{"A=B"}})

	assert.Equal(t, "out", p.Text)
}

func TestFormat_Undetermined(t *testing.T) {
	t.Parallel()

	res := &runner.Result{
		Output: []byte("hcrun: Command failed: not found"),
		Status: runner.Status{Kind: runner.Undetermined},
	}
	p := Format(res, []string{"missing"}, Options{})

	require.NotNil(t, p.ExitCode)
	assert.Equal(t, uint8(runner.UndeterminedCode), *p.ExitCode)
	assert.Equal(t, "hcrun: Command failed: not found", p.Text)
}

func TestFormat_InvalidUTF8(t *testing.T) {
	t.Parallel()

	p := Format(exited("ok\xff\xfe!", 0), nil, Options{})

	assert.True(t, utf8.ValidString(p.Text))
	assert.Equal(t, "ok�!", p.Text)
}

func TestFormat_Idempotent(t *testing.T) {
	t.Parallel()

	res := exited(strings.Repeat("line of output\n", 2000), 1)
	opts := Options{Detailed: true, Env: []string{"A=B"}}

	first := Format(res, []string{"job"}, opts)
	second := Format(res, []string{"job"}, opts)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, *first.ExitCode, *second.ExitCode)
}

func TestFormat_LongMultibyteOutput(t *testing.T) {
	t.Parallel()

	part := "🇺🇸⚾ "
	msg := strings.Repeat(part, 1000) + "\n"
	require.Greater(t, len(msg), MaxBytes)
	require.False(t, utf8.RuneStart(msg[len(msg)-MaxBytes]), "cut must land inside a character")

	p := Format(exited(msg, 0), []string{"echo", msg}, Options{})

	assert.LessOrEqual(t, len(p.Text), MaxBytes)
	assert.True(t, utf8.ValidString(p.Text))
	assert.True(t, strings.HasPrefix(p.Text, " "+part), "text starts with %q", p.Text[:20])
	assert.True(t, strings.HasSuffix(p.Text, part+"\n"))
	assert.Equal(t, 9998, len(p.Text))
}

func TestFormat_LongOutputHead(t *testing.T) {
	t.Parallel()

	msg := strings.Repeat("🇺🇸⚾ ", 1000)
	p := Format(exited(msg, 0), []string{"echo"}, Options{Head: true})

	assert.LessOrEqual(t, len(p.Text), MaxBytes)
	assert.True(t, utf8.ValidString(p.Text))
	assert.True(t, strings.HasPrefix(p.Text, "🇺🇸⚾ "))
	assert.NotEqual(t, utf8.RuneError, []rune(p.Text)[len([]rune(p.Text))-1])
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		limit int
		head  bool
		want  string
	}{
		{"under budget", "hello", 10, false, "hello"},
		{"exact budget", "0123456789", 10, false, "0123456789"},
		{"tail ascii", "0123456789", 4, false, "6789"},
		{"head ascii", "0123456789", 4, true, "0123"},
		{"tail cuts character", "aé", 1, false, ""},
		{"tail cuts emoji", "x😀yz", 4, false, "yz"},
		{"head cuts emoji", "xy😀z", 4, true, "xy"},
		{"head keeps whole character", "é😀", 6, true, "é😀"},
		{"tail keeps whole character", "aaé", 2, false, "é"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Truncate(tc.in, tc.limit, tc.head)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), tc.limit)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestOptions_Budget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MaxBytes, Options{}.budget())
	assert.Equal(t, 42, Options{MaxBytes: 42}.budget())
}
