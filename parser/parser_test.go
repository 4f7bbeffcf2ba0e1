package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libBlock = `CHANGE: src/lib.rs
<<<<<<< CURRENT
pub fn old() {}
=======
pub fn new() {}
>>>>>>> NEW`

func TestParse_PatchBlock(t *testing.T) {
	calls := Parse(libBlock)

	require.Len(t, calls, 1)
	assert.Equal(t, ToolWriteFileDelta, calls[0].Name)
	assert.Equal(t, "src/lib.rs:::pub fn old() {}\npub fn new() {}", calls[0].Parameter)

	spec, err := calls[0].Spec()
	require.NoError(t, err)
	assert.Equal(t, DeltaSpec{Path: "src/lib.rs", Old: "pub fn old() {}", New: "pub fn new() {}"}, spec)
}

func TestParse_BlocksInSourceOrder(t *testing.T) {
	raw := "I will update both files.\n\n" +
		"CHANGE: a.go\n<<<<<<< CURRENT\nx := 1\n=======\nx := 2\n>>>>>>> NEW\n" +
		"read_file(\"ignored.txt\")\n" +
		"CHANGE: b.go\n<<<<<<< CURRENT\n=======\npackage b\n>>>>>>> NEW\n"

	calls := Parse(raw)

	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, ToolWriteFileDelta, c.Name, "simple calls must not be mixed into a patch response")
	}
	assert.Equal(t, "a.go", calls[0].Delta.Path)
	assert.Equal(t, "b.go", calls[1].Delta.Path)
	assert.Empty(t, calls[1].Delta.Old)
	assert.Equal(t, "package b", calls[1].Delta.New)
}

func TestParse_MalformedBlocks(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		paths []string
	}{
		{
			name: "missing NEW terminator",
			raw:  "CHANGE: a.go\n<<<<<<< CURRENT\nold\n=======\nnew\n",
		},
		{
			name: "missing divider",
			raw:  "CHANGE: a.go\n<<<<<<< CURRENT\nold\n>>>>>>> NEW\n",
		},
		{
			name: "missing CURRENT marker",
			raw:  "CHANGE: a.go\nold\n=======\nnew\n>>>>>>> NEW\n",
		},
		{
			name: "empty path",
			raw:  "CHANGE:\n<<<<<<< CURRENT\nold\n=======\nnew\n>>>>>>> NEW\n",
		},
		{
			name:  "malformed block followed by a good one",
			raw:   "CHANGE: broken.go\n<<<<<<< CURRENT\nold\n" + libBlock,
			paths: []string{"src/lib.rs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := Parse(tt.raw)

			var paths []string
			for _, c := range calls {
				require.Equal(t, ToolWriteFileDelta, c.Name)
				paths = append(paths, c.Delta.Path)
			}
			assert.Equal(t, tt.paths, paths)
		})
	}
}

func TestParse_MultiLineBlock(t *testing.T) {
	raw := "```rust\nCHANGE: src/main.rs\n<<<<<<< CURRENT\n\nfn main() {\n    old();\n}\n\n=======\nfn main() {\n    new();\n}\n>>>>>>> NEW\n```"

	calls := Parse(raw)

	require.Len(t, calls, 1)
	spec, err := calls[0].Spec()
	require.NoError(t, err)
	assert.Equal(t, "fn main() {\n    old();\n}", spec.Old)
	assert.Equal(t, "fn main() {\n    new();\n}", spec.New)
}

func TestParse_SimpleCalls(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []ToolCall
	}{
		{
			name:     "read_file call syntax",
			raw:      `read_file("src/main.rs")`,
			expected: []ToolCall{{Name: ToolReadFile, Parameter: "src/main.rs"}},
		},
		{
			name:     "read_file single quotes",
			raw:      `Let me look: read_file('Cargo.toml')`,
			expected: []ToolCall{{Name: ToolReadFile, Parameter: "Cargo.toml"}},
		},
		{
			name:     "read_file label syntax",
			raw:      `read_file: "README.md"`,
			expected: []ToolCall{{Name: ToolReadFile, Parameter: "README.md"}},
		},
		{
			name:     "execute_command call syntax",
			raw:      `execute_command("cargo build")`,
			expected: []ToolCall{{Name: ToolExecuteCommand, Parameter: "cargo build"}},
		},
		{
			name:     "execute_command label syntax",
			raw:      `execute_command: 'ls -la'`,
			expected: []ToolCall{{Name: ToolExecuteCommand, Parameter: "ls -la"}},
		},
		{
			name:     "quoted command containing a parenthesis",
			raw:      `execute_command("echo $(pwd)")`,
			expected: []ToolCall{{Name: ToolExecuteCommand, Parameter: "echo $(pwd)"}},
		},
		{
			name:     "bracket-wrapped quirk",
			raw:      `execute_command code{"command":"go test ./..."}`,
			expected: []ToolCall{{Name: ToolExecuteCommand, Parameter: "go test ./..."}},
		},
		{
			name: "both tools on one line",
			raw:  `read_file("a.txt") then execute_command("cat a.txt")`,
			expected: []ToolCall{
				{Name: ToolReadFile, Parameter: "a.txt"},
				{Name: ToolExecuteCommand, Parameter: "cat a.txt"},
			},
		},
		{
			name: "fenced calls",
			raw:  "```bash\nexecute_command(\"make\")\n```\n```\nread_file(\"Makefile\")\n```",
			expected: []ToolCall{
				{Name: ToolExecuteCommand, Parameter: "make"},
				{Name: ToolReadFile, Parameter: "Makefile"},
			},
		},
		{
			name: "empty argument dropped",
			raw:  `read_file("")`,
		},
		{
			name: "label without quotes ignored",
			raw:  `read_file: src/main.rs`,
		},
		{
			name: "stray markers ignored",
			raw:  "=======\n>>>>>>> NEW\nread_file(\"x.go\")",
			expected: []ToolCall{{Name: ToolReadFile, Parameter: "x.go"}},
		},
		{
			name: "prose only",
			raw:  "The build is green. Nothing else to do.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := Parse(tt.raw)
			if tt.expected == nil {
				assert.Empty(t, calls)
				return
			}
			assert.Equal(t, tt.expected, calls)
		})
	}
}

func TestParse_Dedupe(t *testing.T) {
	raw := "read_file(\"a.txt\")\nsome prose\nread_file(\"a.txt\")\nread_file(\"b.txt\")"

	calls := Parse(raw)

	assert.Equal(t, []ToolCall{
		{Name: ToolReadFile, Parameter: "a.txt"},
		{Name: ToolReadFile, Parameter: "b.txt"},
	}, calls)
}

func TestParse_DedupeBlocks(t *testing.T) {
	calls := Parse(libBlock + "\n" + libBlock)
	assert.Len(t, calls, 1)
}

func TestParse_DistinctBlocksSharingParameter(t *testing.T) {
	raw := "CHANGE: f.txt\n<<<<<<< CURRENT\na\nb\n=======\nc\n>>>>>>> NEW\n" +
		"CHANGE: f.txt\n<<<<<<< CURRENT\na\n=======\nb\nc\n>>>>>>> NEW\n"

	calls := Parse(raw)

	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Parameter, calls[1].Parameter)
	assert.Equal(t, DeltaSpec{Path: "f.txt", Old: "a\nb", New: "c"}, *calls[0].Delta)
	assert.Equal(t, DeltaSpec{Path: "f.txt", Old: "a", New: "b\nc"}, *calls[1].Delta)
}

func TestParse_Union(t *testing.T) {
	raw := libBlock + "\nexecute_command(\"cargo test\")"

	assert.Len(t, New().Parse(raw), 1)

	calls := New(WithUnion()).Parse(raw)
	require.Len(t, calls, 2)
	assert.Equal(t, ToolWriteFileDelta, calls[0].Name)
	assert.Equal(t, ToolCall{Name: ToolExecuteCommand, Parameter: "cargo test"}, calls[1])
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n   \n"))
}

func TestParse_RoundTrip(t *testing.T) {
	specs := []DeltaSpec{
		{Path: "src/lib.rs", Old: "pub fn old() {}", New: "pub fn new() {}"},
		{Path: "new/file.txt", Old: "", New: "hello\nworld"},
		{Path: "main.go", Old: "func a() {\n}", New: ""},
	}

	for _, spec := range specs {
		t.Run(spec.Path, func(t *testing.T) {
			calls := Parse(spec.Block())
			require.Len(t, calls, 1)

			got, err := calls[0].Spec()
			require.NoError(t, err)
			assert.Equal(t, spec, got)

			again := Parse(got.Block())
			assert.Equal(t, calls, again)
		})
	}
}

func TestParseDeltaParameter(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		want    DeltaSpec
		wantErr bool
	}{
		{
			name:  "path old and new",
			param: "a.go:::x := 1\nx := 2\ny := 3",
			want:  DeltaSpec{Path: "a.go", Old: "x := 1", New: "x := 2\ny := 3"},
		},
		{
			name:  "empty old",
			param: " a.go :::\nbody",
			want:  DeltaSpec{Path: "a.go", Old: "", New: "body"},
		},
		{name: "missing separator", param: "a.go\nx", wantErr: true},
		{name: "missing newline", param: "a.go:::x", wantErr: true},
		{name: "empty path", param: " :::x\ny", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDeltaParameter(tt.param)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDelta)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToolCall_Spec(t *testing.T) {
	_, err := ToolCall{Name: ToolReadFile, Parameter: "a.go"}.Spec()
	assert.ErrorIs(t, err, ErrInvalidDelta)

	spec, err := ToolCall{Name: ToolWriteFileDelta, Parameter: "a.go:::x\ny"}.Spec()
	require.NoError(t, err)
	assert.Equal(t, DeltaSpec{Path: "a.go", Old: "x", New: "y"}, spec)
}

func TestToolCall_String(t *testing.T) {
	assert.Equal(t, "read_file: a.go", ToolCall{Name: ToolReadFile, Parameter: "a.go"}.String())
	assert.Equal(t, "write_file_delta: src/lib.rs", Parse(libBlock)[0].String())
}

func TestCleanResponse(t *testing.T) {
	raw := "<|start|>assistant<|channel|>final<|message|>  read_file(\"a.txt\")<|end|>  \n"
	assert.Equal(t, "final  read_file(\"a.txt\")", CleanResponse(raw))
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "tagged fence", in: "```go\nx\n```", expected: "\nx\n"},
		{name: "indented fence", in: "  ```\nx", expected: "  \nx"},
		{name: "inline fence", in: "run ```ls``` now", expected: "run ls now"},
		{name: "no fences", in: "plain", expected: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.in))
		})
	}
}

func TestBlockState_String(t *testing.T) {
	assert.Equal(t, "seeking", stateSeeking.String())
	assert.Equal(t, "in_new", stateInNew.String())
	assert.Equal(t, "unknown", blockState(42).String())
}
