package cxx

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonEntry is one compile_commands.json record. Entries may carry either a
// single shell-quoted "command" string or an already-tokenized "arguments"
// list; both forms are in active use across CMake/Bazel/Ninja generators.
type jsonEntry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Command   string   `json:"command"`
}

// jsonCompilationDatabase reads a standard compile_commands.json file,
// mirroring clang.cindex.CompilationDatabase.fromDirectory without requiring
// a libclang call just to enumerate commands.
type jsonCompilationDatabase struct {
	commands []CompileCommand
}

// LoadCompilationDatabase parses the compile_commands.json at path.
func LoadCompilationDatabase(path string) (CompilationDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cxx: reading compilation database: %w", err)
	}

	var entries []jsonEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cxx: parsing compilation database: %w", err)
	}

	db := &jsonCompilationDatabase{commands: make([]CompileCommand, 0, len(entries))}
	for _, e := range entries {
		args := e.Arguments
		if len(args) == 0 && e.Command != "" {
			args = splitCommandLine(e.Command)
		}
		db.commands = append(db.commands, CompileCommand{
			Filename:  e.File,
			Directory: e.Directory,
			Arguments: args,
		})
	}
	return db, nil
}

func (db *jsonCompilationDatabase) Commands() ([]CompileCommand, error) {
	return db.commands, nil
}

// splitCommandLine tokenizes a shell-quoted compiler invocation, handling
// single and double quotes but not full shell expansion (backticks,
// variable substitution, globbing) — compile_commands.json generators never
// emit those, only plain argument quoting for paths containing spaces.
func splitCommandLine(cmd string) []string {
	var (
		args  []string
		cur   []rune
		quote rune
	)
	flush := func() {
		if len(cur) > 0 {
			args = append(args, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range cmd {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur = append(cur, r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t':
			flush()
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return args
}
