package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/editor"
	"github.com/matzehuels/mindlayout/pkg/engine"
	mlerrors "github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/host"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// shellCommand opens an interactive editing session on one scene.
func (c *CLI) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <scene>",
		Short: "Edit a scene interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShell(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runShell(ctx context.Context, name string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	sh := newShell(runner, name, os.Stdout)
	if _, err := sh.host.Objects(ctx); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          StyleHighlight.Render(name) + "> ",
		HistoryFile:     c.settings.Shell.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    shellCompleter(),
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	printInfo("Editing %s. Type 'help' for commands.", name)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				printInfo("Use 'exit' to leave the shell.")
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if mlerrors.Is(err, mlerrors.ErrCodeInvariantViolation) {
				printRejected(err)
				continue
			}
			printError("%s", mlerrors.UserMessage(err))
		}
	}
}

// shell executes editing commands against one scene.
type shell struct {
	name   string
	runner *pipeline.Runner
	host   *host.StoreHost
	engine *engine.Engine
	out    io.Writer
}

func newShell(r *pipeline.Runner, name string, out io.Writer) *shell {
	h := r.Host(name)
	return &shell{name: name, runner: r, host: h, engine: r.Engine(h), out: out}
}

// shellCommands maps command names to usage lines.
var shellCommands = map[string]string{
	"tree":     "tree [all]",
	"add":      "add <node> <text>",
	"sibling":  "sibling <node> <text>",
	"text":     "text <node> <text>",
	"fold":     "fold <node> [self|children|all]",
	"up":       "up <node>",
	"down":     "down <node>",
	"promote":  "promote <node>",
	"demote":   "demote <node>",
	"pin":      "pin <node>",
	"swap":     "swap <node>",
	"boundary": "boundary <node>",
	"group":    "group <node>",
	"delete":   "delete <node>",
	"layout":   "layout [ungroup]",
	"render":   "render <file.svg>",
	"help":     "help",
	"exit":     "exit",
}

func shellCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range slices.Sorted(maps.Keys(shellCommands)) {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// exec runs one input line.
func (s *shell) exec(ctx context.Context, line string) error {
	args := splitArgs(line)
	if len(args) == 0 {
		return nil
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "exit", "quit":
		return errQuit
	case "help":
		for _, name := range slices.Sorted(maps.Keys(shellCommands)) {
			fmt.Fprintln(s.out, "  "+shellCommands[name])
		}
		return nil
	case "tree":
		return s.tree(ctx, len(args) > 0 && args[0] == "all")
	case "layout":
		return s.layout(ctx, len(args) > 0 && args[0] == "ungroup")
	case "render":
		if len(args) != 1 {
			return usage(cmd)
		}
		return s.render(ctx, args[0])
	}

	usageLine, ok := shellCommands[cmd]
	if !ok {
		return mlerrors.New(mlerrors.ErrCodeInvalidInput, "unknown command %q (try 'help')", cmd)
	}
	if len(args) == 0 {
		return usage(cmd)
	}
	id, err := s.resolve(ctx, args[0])
	if err != nil {
		return err
	}
	rest := args[1:]
	needsText := strings.Contains(usageLine, "<text>")
	if needsText && len(rest) == 0 {
		return usage(cmd)
	}
	text := strings.Join(rest, " ")

	e := s.engine
	switch cmd {
	case "add":
		var created string
		if created, err = e.AddChild(ctx, id, text); err == nil {
			fmt.Fprintln(s.out, created)
		}
	case "sibling":
		var created string
		if created, err = e.AddSibling(ctx, id, text); err == nil {
			fmt.Fprintln(s.out, created)
		}
	case "text":
		err = e.SetText(ctx, id, text)
	case "fold":
		mode := editor.FoldSelf
		if len(rest) > 0 {
			if mode, err = editor.ParseFoldMode(rest[0]); err != nil {
				return err
			}
		}
		err = e.ToggleFold(ctx, id, mode)
	case "up":
		err = e.ChangeNodeOrder(ctx, id, editor.Up)
	case "down":
		err = e.ChangeNodeOrder(ctx, id, editor.Down)
	case "promote":
		err = e.Promote(ctx, id)
	case "demote":
		err = e.Demote(ctx, id)
	case "pin":
		err = e.TogglePin(ctx, id)
	case "swap":
		err = e.SwapSide(ctx, id)
	case "boundary":
		err = e.ToggleBoundary(ctx, id)
	case "group":
		err = e.ToggleBranchGroup(ctx, id)
	case "delete":
		err = e.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	return s.host.Flush(ctx)
}

func (s *shell) resolve(ctx context.Context, ref string) (string, error) {
	objs, err := s.host.Objects(ctx)
	if err != nil {
		return "", err
	}
	return resolveNode(objs, ref)
}

func (s *shell) tree(ctx context.Context, all bool) error {
	objs, err := s.host.Objects(ctx)
	if err != nil {
		return err
	}
	for _, r := range flattenTree(objs, all) {
		fmt.Fprintln(s.out, formatRow(r, true))
	}
	return nil
}

func (s *shell) layout(ctx context.Context, ungroup bool) error {
	roots, err := s.engine.Roots(ctx)
	if err != nil {
		return err
	}
	for _, r := range roots {
		if _, err := s.engine.Layout(ctx, r, engine.LayoutOptions{ForceUngroup: ungroup}); err != nil {
			return err
		}
	}
	return s.host.Flush(ctx)
}

func (s *shell) render(ctx context.Context, path string) error {
	if err := s.host.Flush(ctx); err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	data, _, err := s.runner.Render(ctx, s.name, pipeline.RenderOptions{Format: format})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(s.out, path)
	return nil
}

func usage(cmd string) error {
	return mlerrors.New(mlerrors.ErrCodeInvalidInput, "usage: %s", shellCommands[cmd])
}

// splitArgs splits a line on whitespace, keeping double-quoted runs together.
func splitArgs(line string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote bool
		have  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quote = !quote
			have = true
		case !quote && (r == ' ' || r == '\t'):
			if have {
				args = append(args, cur.String())
				cur.Reset()
				have = false
			}
		default:
			cur.WriteRune(r)
			have = true
		}
	}
	if have {
		args = append(args, cur.String())
	}
	return args
}
