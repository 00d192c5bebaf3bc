package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesAllThreeLists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa4u.yaml")
	content := "ignoreFuncs:\n  - my_malloc\nignoreMembers:\n  - Foo.bar\nignoreDirs:\n  - thirdparty\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"my_malloc"}, o.IgnoreFuncs)
	assert.Equal(t, []string{"Foo.bar"}, o.IgnoreMembers)
	assert.Equal(t, []string{"thirdparty"}, o.IgnoreDirs)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
