package powershell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor/powershell/config"
	pssecurity "confutils-worker/services/executor/powershell/security"
	"confutils-worker/services/ratelimit"
)

// fakeExecCommand 把子进程替换为当前测试二进制中的 TestHelperProcess
func fakeExecCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}
	if os.Getenv("MOCK_ECHO_ARGS") == "1" {
		fmt.Fprint(os.Stdout, strings.Join(args, "|"))
		fmt.Fprint(os.Stdout, "|LANG="+os.Getenv("LANG"))
		os.Exit(0)
	}
	if d := os.Getenv("MOCK_SLEEP"); d != "" {
		dur, _ := time.ParseDuration(d)
		time.Sleep(dur)
	}
	fmt.Fprint(os.Stdout, os.Getenv("MOCK_STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("MOCK_STDERR"))
	code := 0
	if os.Getenv("MOCK_EXIT") == "1" {
		code = 1
	}
	os.Exit(code)
}

func useHelper(t *testing.T) {
	t.Helper()
	orig := execCommandContext
	execCommandContext = fakeExecCommand
	t.Cleanup(func() { execCommandContext = orig })
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
}

func testExecutor(opts ...Option) *Executor {
	c := config.Default()
	return New(c.Shell, opts...)
}

func TestRun_Success(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_STDOUT", "OK\n")

	out, err := testExecutor().Run(context.Background(), "Write-Output OK", Options{})
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
}

func TestRun_PassesArgsAndEnv(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_ECHO_ARGS", "1")
	t.Setenv("LANG", "C")

	out, err := testExecutor().Run(context.Background(), "Get-Date", Options{})
	require.NoError(t, err)
	assert.Equal(t, "powershell|-NoProfile|-NonInteractive|-Command|Get-Date|LANG=en_US.UTF-8", out)
}

func TestRun_PermissionDeniedFromStdout(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_EXIT", "1")
	t.Setenv("MOCK_STDOUT", "Access is denied")

	_, err := testExecutor().Run(context.Background(), "Stop-Service Spooler", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.PermissionDenied))
	assert.Equal(t, "Access is denied", err.Error())
}

func TestRun_GenericStripsDiagnostics(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_EXIT", "1")
	t.Setenv("MOCK_STDOUT", "ignored")
	t.Setenv("MOCK_STDERR", "Cannot find service 'x'.\nAt line:1 char:1\n+ Get-Service x\n    + CategoryInfo : ObjectNotFound\n    + FullyQualifiedErrorId : NoServiceFound\n")

	_, err := testExecutor().Run(context.Background(), "Get-Service x", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
	assert.Equal(t, "Cannot find service 'x'.", err.Error())
}

func TestRun_EmptyScript(t *testing.T) {
	_, err := testExecutor().Run(context.Background(), "   ", Options{})
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

func TestRun_SanitizerGate(t *testing.T) {
	useHelper(t)
	c := config.Default()
	e := New(c.Shell, WithValidator(pssecurity.NewValidatorFromConfig(c.Security)))

	_, err := e.Run(context.Background(), "Get-Date && calc", Options{})
	assert.True(t, errs.Is(err, errs.SecurityViolation))

	t.Setenv("MOCK_STDOUT", "ran")
	out, err := e.Run(context.Background(), "Get-Date && calc", Options{SkipSanitize: true})
	require.NoError(t, err)
	assert.Equal(t, "ran", out)
}

func TestRun_GateOnWhenValidationKeyOmitted(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_STDOUT", "spawned")

	file := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(file, []byte("security:\n  maxScriptLength: 20000\n"), 0o644))
	c, err := config.Load(file)
	require.NoError(t, err)

	for _, e := range []*Executor{NewFromConfig(c, ratelimit.Service{}), New(c.Shell)} {
		out, err := e.Run(context.Background(), "Get-Date && Remove-Item C:\\x", Options{})
		assert.True(t, errs.Is(err, errs.SecurityViolation))
		assert.Empty(t, out)
	}
}

func TestRun_RateLimit(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_STDOUT", "ok")
	limiter := ratelimit.Service{Store: ratelimit.NewMemoryStore(), Enabled: true}
	e := testExecutor(WithLimiter(limiter, config.RateLimitRule{MaxRequests: 2, WindowSeconds: 60}))

	for i := 0; i < 2; i++ {
		_, err := e.Run(context.Background(), "Get-Date", Options{})
		require.NoError(t, err)
	}
	_, err := e.Run(context.Background(), "Get-Date", Options{})
	assert.True(t, errs.Is(err, errs.RateLimitExceeded))

	_, err = e.Run(context.Background(), "Get-Date", Options{SkipRateLimit: true})
	assert.NoError(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_SLEEP", "5s")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	_, err := testExecutor().Run(ctx, "Start-Sleep 5", Options{})
	assert.True(t, errs.Is(err, errs.CancellationRequested))
}

func TestRun_Timeout(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_SLEEP", "5s")

	c := config.Default()
	c.Shell.TimeoutSeconds = 1
	_, err := New(c.Shell).Run(context.Background(), "Start-Sleep 5", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
	assert.Contains(t, err.Error(), "timed out")
}

func TestRun_CallerDeadlineIsTimeout(t *testing.T) {
	useHelper(t)
	t.Setenv("MOCK_SLEEP", "5s")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := testExecutor().Run(ctx, "Start-Sleep 5", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
	assert.Contains(t, err.Error(), "timed out")
}

func TestRun_SpawnFailure(t *testing.T) {
	c := config.Default()
	c.Shell.Command = "confutils-no-such-interpreter"
	_, err := New(c.Shell).Run(context.Background(), "Get-Date", Options{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Generic))
}

func TestCleanMessage(t *testing.T) {
	assert.Equal(t, "boom", CleanMessage("boom\r\nAt line:3 char:9\r\n+ ~~~"))
	assert.Equal(t, "+ only noise", CleanMessage("  + only noise  "))
	assert.Equal(t, "", CleanMessage("   "))
}

func TestMergeEnv(t *testing.T) {
	env := mergeEnv([]string{"PATH=/bin", "lang=C"}, map[string]string{"LANG": "en_US.UTF-8"})
	assert.Contains(t, env, "PATH=/bin")
	assert.Contains(t, env, "LANG=en_US.UTF-8")
	assert.NotContains(t, env, "lang=C")
}
