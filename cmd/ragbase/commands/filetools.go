package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragbase/ragbase-go/internal/filetools"
	"github.com/ragbase/ragbase-go/internal/logging"
)

// NewFiletoolsCmd constructs the `ragbase filetools` command group: a
// newline-delimited JSON tool session over stdio, plus a one-shot in-process
// invocation for scripting without a session.
func NewFiletoolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filetools",
		Short: "Serve or call the file-tool session",
		Long: `File tools exposed over a newline-delimited JSON session.

The session offers two tools: create_file writes a file (creating parent
directories), and list_files lists a directory with sizes. It is intended
as a minimal tool backend for LLM tool-calling experiments and scripting.`,
	}

	cmd.AddCommand(
		newFiletoolsServeCmd(),
		newFiletoolsCallCmd(),
	)

	return cmd
}

// newFiletoolsServeCmd constructs `ragbase filetools serve`, which runs the
// session over this process's stdin/stdout until EOF.
func newFiletoolsServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the file-tool session on stdin/stdout",
		Long: `Serve the file-tool session over stdin/stdout.

Each request is one JSON object per line:

  {"id": 1, "tool": "list_tools"}
  {"id": 2, "tool": "create_file", "args": {"file_path": "notes/a.txt"}}
  {"id": 3, "tool": "list_files", "args": {"directory": "notes"}}

The session ends cleanly when stdin reaches EOF.

Example:
  ragbase filetools serve < requests.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			return filetools.NewServer().Serve(ctx, os.Stdin, os.Stdout) //nolint:wrapcheck // CLI entry point
		},
	}
}

// newFiletoolsCallCmd constructs `ragbase filetools call`, which invokes a
// single tool in-process and prints the result. It does not talk to a running
// session; use the session Client for that.
func newFiletoolsCallCmd() *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "call [tool]",
		Short: "Invoke a single file tool and print the result",
		Long: `Invoke one file tool directly, without a stdio session.

Examples:
  ragbase filetools call create_file --args '{"file_path":"notes/a.txt","content":"hello"}'
  ragbase filetools call list_files --args '{"directory":"notes"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parsed struct {
				FilePath  string `json:"file_path"`
				Content   string `json:"content"`
				Directory string `json:"directory"`
			}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &parsed); err != nil {
					return fmt.Errorf("filetools: invalid --args JSON: %w", err)
				}
			}

			switch args[0] {
			case "create_file":
				if parsed.FilePath == "" {
					return fmt.Errorf("filetools: create_file requires file_path in --args")
				}
				content := parsed.Content
				if content == "" {
					content = filetools.DefaultFileContent
				}
				fmt.Println(filetools.CreateFile(parsed.FilePath, content))
			case "list_files":
				dir := parsed.Directory
				if dir == "" {
					dir = "."
				}
				fmt.Println(filetools.ListFiles(dir))
			default:
				return fmt.Errorf("filetools: unknown tool %q — valid tools: create_file, list_files", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "", "Tool arguments as a JSON object")

	return cmd
}
