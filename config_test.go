package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/testerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	inTempDir(t)
	cfg := testerr.Shall1(NewConfig([]string{"./tool.py", "--test"})).BeNil(t)
	assert.Equal(t, "tool.py", cfg.ModulePath)
	assert.Equal(t, "", cfg.ModuleDir)
	assert.Equal(t, "tool.py", cfg.ModuleFile)
	assert.Equal(t, "tool", cfg.ModuleName)
	assert.Equal(t, ".py", cfg.ModuleExt)
	assert.Equal(t, []string{"./tool.py", "--test"}, cfg.Argv)
	assert.Equal(t, "build/", cfg.BuildDir)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	cwd := testerr.Shall1(os.Getwd()).BeNil(t)
	assert.Equal(t, filepath.Base(cwd), cfg.WorkName)
}

func TestNewConfig_subdir(t *testing.T) {
	inTempDir(t)
	cfg := testerr.Shall1(NewConfig([]string{"sub/tool.py"})).BeNil(t)
	assert.Equal(t, "sub/tool.py", cfg.ModulePath)
	assert.Equal(t, "sub", cfg.ModuleDir)
	assert.Equal(t, "tool", cfg.ModuleName)
}

func TestNewConfig_empty(t *testing.T) {
	_, err := NewConfig(nil)
	assert.Error(t, err)
}

func TestConfig_LoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(file, []byte("timeout: 7\nbuild-dir: out\npip: pipx\n"), 0666))
	cfg := emitterConfig("tool.py")
	require.NoError(t, cfg.LoadFile(file))
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, "out/", cfg.BuildDir)
	assert.Equal(t, "pipx", cfg.Pip)
}

func TestConfig_LoadFileMissing(t *testing.T) {
	cfg := emitterConfig("tool.py")
	require.NoError(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "build/", cfg.BuildDir)
}

func TestConfig_LoadFileBroken(t *testing.T) {
	file := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(file, []byte("timeout: [\n"), 0666))
	assert.Error(t, emitterConfig("tool.py").LoadFile(file))
}

func TestConfig_Value(t *testing.T) {
	cfg := emitterConfig("tool.py", "--makemake")
	for key, want := range map[string]string{
		"module.path": "tool.py",
		"module.dir":  "",
		"module.file": "tool.py",
		"module.name": "tool",
		"module.ext":  ".py",
		"work.name":   "proj",
		"build.dir":   "build/",
		"pip":         "",
		"timeout":     "3s",
	} {
		got := testerr.Shall1(cfg.Value(key)).BeNil(t)
		assert.Equal(t, want, got, key)
	}
	_, err := cfg.Value("no.such.key")
	assert.Error(t, err)
}
