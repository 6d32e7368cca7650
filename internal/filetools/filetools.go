// Package filetools implements the file-operation tool set: creating text
// files and listing directories, returning human-readable result strings.
// The tools are exposed two ways: as Eino tools for an LLM tool-calling
// loop, and over a newline-delimited JSON stdio session for remote clients.
package filetools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// DefaultFileContent is written when create_file is called without content.
const DefaultFileContent = "This is a sample file."

// CreateFile writes content to path, creating parent directories as needed,
// and returns a human-readable result. Empty content falls back to
// DefaultFileContent. Errors are returned as strings rather than error values
// because the consumer is a model or a remote client, not Go code.
func CreateFile(path, content string) string {
	if path == "" {
		return "Error creating file: file_path is required"
	}
	if content == "" {
		content = DefaultFileContent
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Sprintf("Error creating file: %v", err)
	}

	if dir := filepath.Dir(absPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Sprintf("Error creating file: %v", err)
		}
	}

	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error creating file: %v", err)
	}

	return fmt.Sprintf("Successfully created file: %s (%d bytes)", absPath, len(content))
}

// ListFiles renders the contents of a directory: subdirectories first with a
// trailing slash, then files with their sizes, both lexically sorted.
func ListFiles(directory string) string {
	if directory == "" {
		directory = "."
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return fmt.Sprintf("Error listing directory: %v", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Directory does not exist: %s", absDir)
		}
		return fmt.Sprintf("Error listing directory: %v", err)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("Directory %s is empty", absDir)
	}

	var dirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name()+"/")
			continue
		}
		size := int64(0)
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		files = append(files, fmt.Sprintf("%s (%d bytes)", entry.Name(), size))
	}
	sort.Strings(dirs)
	sort.Strings(files)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Contents of %s:\n", absDir)
	if len(dirs) > 0 {
		sb.WriteString(strings.Join(dirs, "\n"))
		sb.WriteString("\n")
	}
	if len(files) > 0 {
		if len(dirs) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(files, "\n"))
	}
	return sb.String()
}

// CreateFileTool exposes CreateFile to the tool-calling loop.
type CreateFileTool struct{}

type createFileInput struct {
	// FilePath is the path where the file should be created.
	FilePath string `json:"file_path"`

	// Content is the text to write. Defaults to DefaultFileContent.
	Content string `json:"content"`
}

// NewCreateFileTool constructs a CreateFileTool.
func NewCreateFileTool() *CreateFileTool { return &CreateFileTool{} }

// Info returns the Eino tool metadata including the JSON input schema.
func (t *CreateFileTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "create_file",
		Desc: "Create a text file with the specified content. " +
			"Parent directories are created as needed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"file_path": {
				Type:     schema.String,
				Desc:     "Path where the file should be created.",
				Required: true,
			},
			"content": {
				Type: schema.String,
				Desc: "Text content to write to the file. Defaults to sample text.",
			},
		}),
	}, nil
}

// InvokableRun creates the file and returns the result string.
func (t *CreateFileTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input createFileInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("create_file: invalid input: %w", err)
	}
	return CreateFile(input.FilePath, input.Content), nil
}

// ListFilesTool exposes ListFiles to the tool-calling loop.
type ListFilesTool struct{}

type listFilesInput struct {
	// Directory is the directory path to list. Defaults to ".".
	Directory string `json:"directory"`
}

// NewListFilesTool constructs a ListFilesTool.
func NewListFilesTool() *ListFilesTool { return &ListFilesTool{} }

// Info returns the Eino tool metadata including the JSON input schema.
func (t *ListFilesTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "list_files",
		Desc: "List files in the specified directory, directories first, with sizes.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"directory": {
				Type: schema.String,
				Desc: "Directory path to list. Defaults to the current directory.",
			},
		}),
	}, nil
}

// InvokableRun lists the directory and returns the result string.
func (t *ListFilesTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input listFilesInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("list_files: invalid input: %w", err)
	}
	return ListFiles(input.Directory), nil
}

// Tools returns the file tool set in registration order.
func Tools() []tool.BaseTool {
	return []tool.BaseTool{
		NewCreateFileTool(),
		NewListFilesTool(),
	}
}
