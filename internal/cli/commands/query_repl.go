package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/crowdstat/pkg/core"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "crowdstat> "
	replContinuePrompt = "      ...> "
)

func runQueryREPL(cmd *cobra.Command, cc *CommandContext) error {
	historyFile := ""
	if cc.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StatePath), "query_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newRelationCompleter(cc),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cc.Renderer.Printf("crowdstat query REPL (%s, table %s)\n", cc.Cfg.Target.Type, cc.Cfg.Table)
	cc.Renderer.Println("Type .help for commands, .quit to exit")
	cc.Renderer.Println()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, cc, line); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt(replContinuePrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := buf.String()
		buf.Reset()
		if err := executeStatement(cmd, cc, query); err != nil {
			cc.Renderer.Error(err.Error())
		}
		cc.Renderer.Println()
	}

	return nil
}

// handleDotCommand runs a REPL meta command and reports whether the REPL should exit.
func handleDotCommand(cmd *cobra.Command, cc *CommandContext, line string) bool {
	parts := strings.Fields(line)
	r := cc.Renderer

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".tables":
		rows := [][]any{{cc.Engine.Table(), "table", "base relation"}}
		for _, obj := range cc.Engine.Catalog() {
			rows = append(rows, []any{obj.Name, string(obj.Mode), obj.Description})
		}
		r.Table([]string{"name", "mode", "description"}, rows)

	case ".views":
		if err := renderCatalog(r, cc.Engine.Catalog(), core.ModeLive); err != nil {
			r.Error(err.Error())
		}

	case ".snapshots":
		if err := renderCatalog(r, cc.Engine.Catalog(), core.ModeSnapshot); err != nil {
			r.Error(err.Error())
		}

	case ".schema":
		if len(parts) < 2 {
			r.Error("usage: .schema <relation>")
			return false
		}
		meta, err := cc.Engine.Describe(cmd.Context(), parts[1])
		if err != nil {
			r.Error(err.Error())
			return false
		}
		rows := make([][]any, len(meta.Columns))
		for i, c := range meta.Columns {
			rows[i] = []any{c.Name, c.Type, c.Nullable}
		}
		r.Table([]string{"column", "type", "nullable"}, rows)

	case ".clear":
		r.Printf("\033[H\033[2J")

	default:
		r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help               Show this help message
  .tables             List the base table and every derived object
  .views              List the live views
  .snapshots          List the snapshot tables
  .schema <relation>  Show the columns of a table or view
  .clear              Clear the screen
  .quit / .exit       Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for relation names
`
	_, _ = fmt.Fprintln(w, help)
}

// newRelationCompleter completes relation names and dot-commands.
func newRelationCompleter(cc *CommandContext) *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{readline.PcItem(cc.Engine.Table())}
	for _, obj := range cc.Engine.Catalog() {
		items = append(items, readline.PcItem(obj.Name))
	}

	schemaItems := make([]readline.PrefixCompleterInterface, len(items))
	copy(schemaItems, items)

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".views"),
		readline.PcItem(".snapshots"),
		readline.PcItem(".schema", schemaItems...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
