package tools

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultPromptTemplate describes the tool protocol to the model.
// It is a text/template executed with PromptData.
const DefaultPromptTemplate = `You are an expert coding assistant with direct file system access to the project at {{.Project}}.

AVAILABLE TOOLS (USE EXACTLY ONE PER RESPONSE):
- read_file: "file/path" - Read file contents
- execute_command: "shell command" - Run command
- File changes (EXACT FORMAT):
CHANGE: file/path
<<<<<<< CURRENT
existing content to replace
=======
new content
>>>>>>> NEW

CRITICAL RULES:
1. ONE TOOL PER MESSAGE - Only one tool call per response
2. NO EXPLANATIONS - Just the tool, no commentary before or after
3. STOP AND WAIT - System will execute and return result
4. EXACT FORMAT - Use the formats shown above exactly
5. NO PLACEHOLDERS - All code must be complete and production-ready
6. RELATIVE PATHS ONLY - Paths are relative to the project root and may not contain ".."

RESPONSE EXAMPLES (CHOOSE ONE):
execute_command: "ls -la"
read_file: "src/main.rs"
CHANGE: src/lib.rs
<<<<<<< CURRENT
pub fn old() {}
=======
pub fn new() {}
>>>>>>> NEW

An empty CURRENT section replaces the whole file. A file that does not exist is created.
CURRENT must match the file exactly, including indentation.

WORKFLOW:
1. Explore: execute_command: "ls -R"
2. Read: read_file: "path/to/file"
3. Modify: Use CHANGE format
4. Verify: run the project's build or tests with execute_command
5. Repeat
`

// PromptData is passed to the system prompt template.
type PromptData struct {
	Project string
}

// RenderPrompt executes tmpl with the project root. An empty tmpl uses
// DefaultPromptTemplate.
func RenderPrompt(tmpl, project string) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPromptTemplate
	}
	t, err := template.New("system_prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse system prompt: %w", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, PromptData{Project: project}); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return sb.String(), nil
}

// SystemPrompt renders the default system prompt for project.
func SystemPrompt(project string) string {
	out, err := RenderPrompt(DefaultPromptTemplate, project)
	if err != nil {
		// The default template is static and always parses.
		panic(err)
	}
	return out
}
