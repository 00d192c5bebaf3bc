package tu

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sa4u-go/sa4u/internal/cxx"
	"github.com/sa4u-go/sa4u/internal/phystype"
	"github.com/sa4u-go/sa4u/internal/smt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicIndex is a cxx.Index that fails the test if ParseTranslationUnit is
// ever called, used to prove a cache hit short-circuits parsing entirely.
type panicIndex struct{ t *testing.T }

func (p panicIndex) ParseTranslationUnit(cmd cxx.CompileCommand) (cxx.Cursor, error) {
	p.t.Fatalf("ParseTranslationUnit called for %s despite a fresh cache entry", cmd.Filename)
	return nil, nil
}

func TestCacheKeyReplacesSlashes(t *testing.T) {
	assert.Equal(t, "_home_user_main.cpp", CacheKey("/home/user/main.cpp"))
}

func TestCacheGetMissWhenNeverPut(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	c := NewCache(filepath.Join(dir, "cache"))
	_, ok := c.Get(src)
	assert.False(t, ok)
}

func TestCachePutThenGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	cacheDir := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	c := NewCache(cacheDir)

	stu := &SerializedTU{
		SerializationTime: time.Now().Add(time.Hour).Unix(),
		Assertions:        []string{"a (0)", "b (1)"},
		Solver:            "(assert true)",
		Spelling:          src,
	}
	require.NoError(t, c.Put(stu))

	got, ok := c.Get(src)
	require.True(t, ok)
	assert.Equal(t, stu.Assertions, got.Assertions)
	assert.Equal(t, stu.Solver, got.Solver)
}

func TestCacheGetStaleWhenFileNewerThanRecord(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	cacheDir := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	c := NewCache(cacheDir)

	stale := &SerializedTU{
		SerializationTime: time.Now().Add(-time.Hour).Unix(),
		Assertions:        []string{"a (0)"},
		Solver:            "(assert true)",
		Spelling:          src,
	}
	require.NoError(t, c.Put(stale))

	_, ok := c.Get(src)
	assert.False(t, ok, "a record older than the source file's mtime must be treated as stale")
}

func TestCacheGetMemoryOnlyWhenDirEmpty(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	c := NewCache("")
	stu := &SerializedTU{
		SerializationTime: time.Now().Add(time.Hour).Unix(),
		Assertions:        []string{"a (0)"},
		Solver:            "(assert true)",
		Spelling:          src,
	}
	require.NoError(t, c.Put(stu))

	got, ok := c.Get(src)
	require.True(t, ok)
	assert.Equal(t, stu.Assertions, got.Assertions)
}

func TestProcessJobReturnsCachedResultWithoutReparsing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	cacheDir := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	cache := NewCache(cacheDir)

	want := &SerializedTU{
		SerializationTime: time.Now().Add(time.Hour).Unix(),
		Assertions:        []string{"constraint_0 (0)"},
		Solver:            "(assert true)",
		Spelling:          src,
	}
	require.NoError(t, cache.Put(want))

	job := cxx.CompileCommand{Filename: src}
	panicEngine := func() smt.Engine {
		t.Fatal("engine factory invoked despite a fresh cache entry")
		return nil
	}

	got, fromCache, err := processJob(job, panicIndex{t}, panicEngine, phystype.Rational, WorkerConfig{}, cache)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, want.Assertions, got.Assertions)
	assert.Equal(t, want.Solver, got.Solver)
}

func TestShardJobsDistributesRoundRobin(t *testing.T) {
	jobs := []cxx.CompileCommand{
		{Filename: "a.cpp"}, {Filename: "b.cpp"}, {Filename: "c.cpp"}, {Filename: "d.cpp"},
	}
	shards := shardJobs(jobs, 2)
	require.Len(t, shards, 2)
	assert.Equal(t, []cxx.CompileCommand{{Filename: "a.cpp"}, {Filename: "c.cpp"}}, shards[0])
	assert.Equal(t, []cxx.CompileCommand{{Filename: "b.cpp"}, {Filename: "d.cpp"}}, shards[1])
}

func TestShardJobsHandlesFewerJobsThanWorkers(t *testing.T) {
	jobs := []cxx.CompileCommand{{Filename: "a.cpp"}}
	shards := shardJobs(jobs, 4)
	require.Len(t, shards, 4)
	assert.Len(t, shards[0], 1)
	assert.Empty(t, shards[1])
}

func TestGetIgnoreLinesFindsMarkedLine(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	content := "int main() {\n  int x = 1; // sa4u:ignore\n  return 0;\n}\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	locs := GetIgnoreLines(src)
	require.Len(t, locs, 1)
	assert.Equal(t, 2, locs[0].Line)
}

func TestGetIgnoreLinesEmptyWhenNoMarker(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){ return 0; }\n"), 0o644))

	assert.Empty(t, GetIgnoreLines(src))
}

func TestGetIgnoreLinesMissingFileReturnsNil(t *testing.T) {
	assert.Nil(t, GetIgnoreLines("/does/not/exist.cpp"))
}
