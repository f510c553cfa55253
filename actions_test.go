package normalize

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/testerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags_Request(t *testing.T) {
	for name, c := range map[string]struct {
		flags Flags
		want  Request
		ok    bool
	}{
		"none":     {Flags{}, Request{}, false},
		"makemake": {Flags{Makemake: true}, Request{Cmd: CmdMakefile, Rules: true}, true},
		"generic":  {Flags{Generic: true}, Request{Cmd: CmdMakefile, Generic: true}, true},
		"dep":      {Flags{Dep: "x.mk"}, Request{Cmd: CmdMakefile, Dep: "x.mk"}, true},
		"makefile wins": {
			Flags{Makemake: true, Test: true},
			Request{Cmd: CmdMakefile, Rules: true},
			true,
		},
		"test":    {Flags{Test: true}, Request{Cmd: CmdTest}, true},
		"sh-test": {Flags{ShTest: "f.sh"}, Request{Cmd: CmdShTest, File: "f.sh"}, true},
		"shebang": {Flags{Shebang: true}, Request{Cmd: CmdShebang}, true},
		"eval":    {Flags{Eval: "module.name"}, Request{Cmd: CmdEval, Key: "module.name"}, true},
	} {
		t.Run(name, func(t *testing.T) {
			req, ok := c.flags.Request()
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, req)
		})
	}
}

func TestFlags_Register(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("tool", flag.ContinueOnError)
	f.Register(fs)
	require.NoError(t, fs.Parse([]string{"--makemake"}))
	assert.True(t, f.Makemake)
	assert.Equal(t, 0, f.Timeout)
	require.NoError(t, fs.Parse([]string{"--timeout", "9"}))
	assert.Equal(t, 9, f.Timeout)
}

func TestRequest_Test(t *testing.T) {
	skipWithoutSh(t)
	cfg := &Config{Timeout: DefaultTimeout}
	var out strings.Builder
	req := Request{Cmd: CmdTest}
	doc := "A tool.\n\nExamples:\n$ echo hi\nhi\n"
	testerr.Shall(req.Run(context.Background(), cfg, doc, &out, TestTracer{t})).BeNil(t)
	assert.Equal(t, "All 1 command usage examples PASS\n", out.String())
}

func TestRequest_Eval(t *testing.T) {
	var out strings.Builder
	req := Request{Cmd: CmdEval, Key: "module.name"}
	testerr.Shall(req.Run(context.Background(), emitterConfig("tool.py"), "", &out, TestTracer{t})).
		BeNil(t)
	assert.Equal(t, "tool\n", out.String())
}

func TestDispatch_unrequested(t *testing.T) {
	var f Flags
	var out, errw strings.Builder
	handled, exit := f.Dispatch(context.Background(), emitterConfig("tool.py"), "", &out, &errw, TestTracer{t})
	assert.False(t, handled)
	assert.Equal(t, 0, exit)
}

func TestDispatch_testPass(t *testing.T) {
	skipWithoutSh(t)
	f := Flags{Test: true, Timeout: 5}
	cfg := &Config{Timeout: DefaultTimeout}
	var out, errw strings.Builder
	doc := "Examples:\n$ echo hi\nhi\n"
	handled, exit := f.Dispatch(context.Background(), cfg, doc, &out, &errw, TestTracer{t})
	assert.True(t, handled)
	assert.Equal(t, 0, exit)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Contains(t, out.String(), "All 1 command usage examples PASS")
}

func TestDispatch_keepsConfiguredTimeout(t *testing.T) {
	skipWithoutSh(t)
	f := Flags{Test: true}
	cfg := &Config{Timeout: 7 * time.Second}
	var out, errw strings.Builder
	handled, exit := f.Dispatch(context.Background(), cfg, "Examples:\n$ true\n", &out, &errw, TestTracer{t})
	assert.True(t, handled)
	assert.Equal(t, 0, exit)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
}

func TestDispatch_testFailure(t *testing.T) {
	skipWithoutSh(t)
	f := Flags{Test: true, Timeout: 5}
	var out, errw strings.Builder
	doc := "Examples:\n$ false\n"
	handled, exit := f.Dispatch(context.Background(), &Config{}, doc, &out, &errw, TestTracer{t})
	assert.True(t, handled)
	assert.Equal(t, 1, exit)
	assert.Contains(t, errw.String(), "example 1 failed")
}

func TestDispatch_shTestRecursive(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("$ true\n"), 0666))
	require.NoError(t, os.Mkdir(file+".lock", 0777))
	f := Flags{ShTest: file, Timeout: 5}
	var out, errw strings.Builder
	handled, exit := f.Dispatch(context.Background(), &Config{}, "", &out, &errw, TestTracer{t})
	assert.True(t, handled)
	assert.Equal(t, 0, exit)
	assert.Contains(t, errw.String(), "Recursive usage of "+file+".lock")
}

func TestShebang(t *testing.T) {
	skipWithoutSh(t)
	file := filepath.Join(t.TempDir(), "tool.py")
	require.NoError(t, os.WriteFile(file, []byte("#!/usr/bin/env python3\r\nprint()\n"), 0666))
	cfg := &Config{ModulePath: file}
	var out strings.Builder
	testerr.Shall(Request{Cmd: CmdShebang}.Run(context.Background(), cfg, "", &out, TestTracer{t})).
		BeNil(t)
	fixed := testerr.Shall1(os.ReadFile(file)).BeNil(t)
	assert.Equal(t, ShebangLine+"\nprint()\n", string(fixed))
	info := testerr.Shall1(os.Stat(file)).BeNil(t)
	assert.NotZero(t, info.Mode()&0111)
	assert.Contains(t, out.String(), "now updated with shebang #!/usr/bin/env python3")
	assert.Contains(t, out.String(), "core.autocrlf input")
}

func TestShebang_alreadyNormalized(t *testing.T) {
	skipWithoutSh(t)
	file := filepath.Join(t.TempDir(), "tool.py")
	require.NoError(t, os.WriteFile(file, []byte(ShebangLine+"\nprint()\n"), 0777))
	cfg := &Config{ModulePath: file}
	var out strings.Builder
	testerr.Shall(Request{Cmd: CmdShebang}.Run(context.Background(), cfg, "", &out, TestTracer{t})).
		BeNil(t)
	assert.NotContains(t, out.String(), "now updated")
}

func TestSplitShebang(t *testing.T) {
	for _, c := range []struct {
		src, shebang, eol, code string
	}{
		{"#!a\ncode\n", "#!a", "\n", "code\n"},
		{"#!a\n#!b\ncode\n", "#!b", "\n", "code\n"},
		{"#!a\r\ncode\n", "#!a", "\r\n", "code\n"},
		{"code\n", "", "", "code\n"},
		{"#!only", "#!only", "", ""},
	} {
		shebang, eol, code := splitShebang([]byte(c.src))
		if string(shebang) != c.shebang || string(eol) != c.eol || string(code) != c.code {
			t.Errorf("splitShebang(%q) = %q, %q, %q", c.src, shebang, eol, code)
		}
	}
}
