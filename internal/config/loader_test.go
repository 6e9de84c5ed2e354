package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Project)
	// Relative defaults are anchored to the config file's directory.
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultMetadataDir), cfg.MetadataDir)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultAuditPath), cfg.AuditPath)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
metadata_dir: meta
project: migration
environment: prod
output: json
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "meta"), cfg.MetadataDir)
	assert.Equal(t, "migration", cfg.Project)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "environment: prod\n")
	t.Setenv("LEDGERPIPE_ENVIRONMENT", "staging")
	t.Setenv("LEDGERPIPE_PROJECT", "migration")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "migration", cfg.Project)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "output: json\n")
	t.Setenv("LEDGERPIPE_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", DefaultOutput, "")
	flags.String("project", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "table"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Output)
	// The project flag was registered but never set: lower layers win.
	assert.Empty(t, cfg.Project)
}

func TestLoad_UnsetFlagsDoNotMaskFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "environment: prod\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("environment", DefaultEnvironment, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoad_KebabFlagMapsToSnakeKey(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("metadata-dir", DefaultMetadataDir, "")
	require.NoError(t, flags.Parse([]string{"--metadata-dir", "custom"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom"), cfg.MetadataDir)
}

func TestLoad_AbsolutePathsKept(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere")
	path := writeConfig(t, dir, "metadata_dir: "+abs+"\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.MetadataDir)
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	assert.Equal(t, root, findProjectRoot(nested))

	orphan := t.TempDir()
	assert.Equal(t, orphan, findProjectRoot(orphan))
}

func TestConfigExistsIn(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, configExistsIn(dir))

	alt := filepath.Join(dir, ConfigFileNameAlt)
	require.NoError(t, os.WriteFile(alt, []byte(""), 0o600))
	assert.Equal(t, alt, configExistsIn(dir))
}
