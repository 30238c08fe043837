package interp_test

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/possh/possh/internal/builtin"
	"github.com/possh/possh/internal/interp"
	"github.com/possh/possh/internal/state"
	"github.com/stretchr/testify/require"
)

// runCapture runs src in a fresh Interp, redirecting its stdout to a
// temp file (rather than reaching into Interp's unexported fd table),
// and returns what landed there plus the final exit status. This
// exercises spec §8's end-to-end scenarios through the same public
// surface cmd/possh itself drives.
func runCapture(t *testing.T, src string) (string, int) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	env := state.NewEnv("possh", nil)
	it := interp.New(env)

	full := "exec > " + out + "\n" + src
	status, uw := it.RunText(full)
	if uw.Kind == interp.UnwindExit {
		status = uw.Status
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	return string(data), status
}

func TestE2E_Echo(t *testing.T) {
	out, status := runCapture(t, "echo hello\n")
	require.Equal(t, "hello\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_ForLoop(t *testing.T) {
	out, status := runCapture(t, "for i in a b c; do echo $i; done\n")
	require.Equal(t, "a\nb\nc\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_IfElse(t *testing.T) {
	out, status := runCapture(t, `x=1; if [ "$x" = 1 ]; then echo yes; else echo no; fi`+"\n")
	require.Equal(t, "yes\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_PipelineBetweenGroups(t *testing.T) {
	out, status := runCapture(t, `{ echo a; echo b; } | { read x; echo "got=$x"; }`+"\n")
	require.Equal(t, "got=a\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_FunctionReturnStatus(t *testing.T) {
	out, status := runCapture(t, "f() { return 3; }; f; echo $?\n")
	require.Equal(t, "3\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_Negation(t *testing.T) {
	_, status := runCapture(t, "! false\n")
	require.Equal(t, 0, status)

	_, status = runCapture(t, "! true\n")
	require.Equal(t, 1, status)
}

func TestE2E_SetShiftPositional(t *testing.T) {
	out, status := runCapture(t, "set -- one two three; shift; echo $1 $#\n")
	require.Equal(t, "two 2\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_HeredocExpanded(t *testing.T) {
	env := state.NewEnv("possh", nil)
	require.NoError(t, env.Set("USER", "abc", false))
	it := interp.New(env)

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	src := "exec > " + out + "\ncat <<EOF\nHi $USER\nEOF\n"
	status, _ := it.RunText(src)
	require.Equal(t, 0, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "Hi abc\n", string(data))
}

func TestE2E_HeredocQuotedDelimiterNotExpanded(t *testing.T) {
	env := state.NewEnv("possh", nil)
	require.NoError(t, env.Set("USER", "abc", false))
	it := interp.New(env)

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	src := "exec > " + out + "\ncat <<'EOF'\nHi $USER\nEOF\n"
	status, _ := it.RunText(src)
	require.Equal(t, 0, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "Hi $USER\n", string(data))
}

func TestE2E_BreakNInNestedLoops(t *testing.T) {
	out, status := runCapture(t, `
for i in 1 2; do
  for j in a b c; do
    echo $i-$j
    break 2
  done
  echo "after-$i"
done
`)
	require.Equal(t, "1-a\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_BreakClampedToLoopDepth(t *testing.T) {
	out, status := runCapture(t, `
for i in 1 2 3; do
  echo $i
  break 999
done
echo done
`)
	require.Equal(t, "1\ndone\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_CaseMatchesFirstPattern(t *testing.T) {
	out, status := runCapture(t, `
x=b
case $x in
  a) echo A ;;
  b) echo B ;;
  *) echo star ;;
esac
`)
	require.Equal(t, "B\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_EmptyInputIsNoCommand(t *testing.T) {
	env := state.NewEnv("possh", nil)
	it := interp.New(env)
	status, uw := it.RunText("")
	require.Equal(t, interp.UnwindNone, uw.Kind)
	require.Equal(t, 0, status)
}

func TestE2E_NestedSubshellsDoNotLeakVariables(t *testing.T) {
	out, status := runCapture(t, `
x=outer
(
  x=inner
  echo "$x"
)
echo "$x"
`)
	require.Equal(t, "inner\nouter\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_WhileLoopBoundedByPositionalShift(t *testing.T) {
	out, status := runCapture(t, `
set -- a b c
while [ "$#" != 0 ]; do
  echo $1
  shift
done
`)
	require.Equal(t, "a\nb\nc\n", out)
	require.Equal(t, 0, status)
}

func TestE2E_SpecialBuiltinUsageErrorIsFatalNonInteractive(t *testing.T) {
	// `break` outside any loop is a special built-in usage error; spec
	// §4.6/§7 say a non-interactive shell treats that as fatal instead
	// of continuing to the next command.
	out, status := runCapture(t, "break\necho unreachable\n")
	require.Equal(t, "", out)
	require.Equal(t, 1, status)
}

func TestE2E_SpecialBuiltinUsageErrorIsNotFatalInteractive(t *testing.T) {
	env := state.NewEnv("possh", nil)
	env.Options.Interactive = true
	it := interp.New(env)

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	status, _ := it.RunText("exec > " + out + "\nbreak\necho reached\n")
	require.Equal(t, 0, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "reached\n", string(data))
}

func TestE2E_ExitInsideTrapHandlerTerminatesShell(t *testing.T) {
	env := state.NewEnv("possh", nil)
	it := interp.New(env)

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	status, _ := it.RunText("exec > " + out + "\ntrap 'echo trapped; exit 9' USR1\necho before\n")
	require.Equal(t, 0, status)

	env.Traps.Raise("USR1")
	status, uw := it.RunText("echo unreachable\n")
	require.Equal(t, interp.UnwindExit, uw.Kind)
	require.Equal(t, 9, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "before\ntrapped\n", string(data))
}

func TestE2E_ExecRedirectionFailureExitsShell(t *testing.T) {
	env := state.NewEnv("possh", nil)
	env.Options.Interactive = true // even interactive, exec's own redirection failure is unconditional
	it := interp.New(env)

	status, uw := it.RunText("exec > /no/such/directory/out\necho unreachable\n")
	require.Equal(t, interp.UnwindExit, uw.Kind)
	require.Equal(t, 1, status)
}
