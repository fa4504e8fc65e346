package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/editor"
	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// editFunc applies one structural edit to the node id.
type editFunc func(ctx context.Context, e *engine.Engine, id string) error

// editCommands returns the structural edit commands. Each takes a scene and a
// node reference (ID, ID prefix or label) and lays the map out again.
func (c *CLI) editCommands() []*cobra.Command {
	simple := []struct {
		use, short string
		fn         editFunc
	}{
		{"promote", "Move a node up one level, next to its parent", wrap((*engine.Engine).Promote)},
		{"demote", "Move a node under its previous sibling", wrap((*engine.Engine).Demote)},
		{"pin", "Toggle whether layout may move a node", wrap((*engine.Engine).TogglePin)},
		{"swap", "Mirror a level-1 branch to the other side of the root", wrap((*engine.Engine).SwapSide)},
		{"boundary", "Toggle the boundary drawn around a branch", wrap((*engine.Engine).ToggleBoundary)},
		{"group", "Toggle grouping of a branch", wrap((*engine.Engine).ToggleBranchGroup)},
		{"delete", "Delete a node and its branch", wrap((*engine.Engine).Delete)},
	}

	var cmds []*cobra.Command
	for _, s := range simple {
		fn := s.fn
		cmds = append(cmds, &cobra.Command{
			Use:   s.use + " <scene> <node>",
			Short: s.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runEdit(cmd.Context(), args[0], args[1], fn)
			},
		})
	}
	return append(cmds,
		c.foldCommand(),
		c.orderCommand(),
		c.addCommand(),
		c.textCommand(),
		c.modeCommand(),
	)
}

func wrap(fn func(*engine.Engine, context.Context, string) error) editFunc {
	return func(ctx context.Context, e *engine.Engine, id string) error { return fn(e, ctx, id) }
}

func (c *CLI) foldCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "fold <scene> <node>",
		Short: "Fold or unfold a branch",
		Long: `Fold or unfold a branch.

  self      toggle the node itself
  children  fold every child branch, or unfold them if all are folded
  all       fold every branch below the node, or unfold the whole subtree`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := editor.ParseFoldMode(mode)
			if err != nil {
				return err
			}
			return c.runEdit(cmd.Context(), args[0], args[1], func(ctx context.Context, e *engine.Engine, id string) error {
				return e.ToggleFold(ctx, id, fm)
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(editor.FoldSelf), "fold mode: self, children, all")
	return cmd
}

func (c *CLI) orderCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "order <scene> <node> <up|down>",
		Short:     "Move a node before or after its neighbouring sibling",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := editor.ParseDirection(args[2])
			if err != nil {
				return err
			}
			return c.runEdit(cmd.Context(), args[0], args[1], func(ctx context.Context, e *engine.Engine, id string) error {
				return e.ChangeNodeOrder(ctx, id, dir)
			})
		},
	}
}

func (c *CLI) addCommand() *cobra.Command {
	var sibling bool

	cmd := &cobra.Command{
		Use:   "add <scene> <node> <text>",
		Short: "Add a child (or, with --sibling, a sibling) to a node",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var created string
			err := c.runEdit(cmd.Context(), args[0], args[1], func(ctx context.Context, e *engine.Engine, id string) error {
				var err error
				if sibling {
					created, err = e.AddSibling(ctx, id, args[2])
				} else {
					created, err = e.AddChild(ctx, id, args[2])
				}
				return err
			})
			if err == nil && created != "" {
				printKeyValue("id", created)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&sibling, "sibling", "s", false, "add a sibling after the node instead of a child")
	return cmd
}

func (c *CLI) textCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "text <scene> <node> <text>",
		Short: "Replace the text of a node",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], args[1], func(ctx context.Context, e *engine.Engine, id string) error {
				return e.SetText(ctx, id, args[2])
			})
		},
	}
}

func (c *CLI) modeCommand() *cobra.Command {
	var (
		mode   string
		arrows string
		auto   string
	)

	cmd := &cobra.Command{
		Use:   "mode <scene> <root>",
		Short: "Change the growth mode, connector style or auto-layout of a map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" && arrows == "" && auto == "" {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to change: pass --growth, --arrows or --auto")
			}
			return c.runEdit(cmd.Context(), args[0], args[1], func(ctx context.Context, e *engine.Engine, id string) error {
				if mode != "" {
					gm, err := scene.ParseGrowthMode(mode)
					if err != nil {
						return err
					}
					if err := e.SetGrowthMode(ctx, id, gm); err != nil {
						return err
					}
				}
				if arrows != "" {
					style, err := parseArrowStyle(arrows)
					if err != nil {
						return err
					}
					if err := e.SetArrowStyle(ctx, id, style); err != nil {
						return err
					}
				}
				switch auto {
				case "":
					return nil
				case "on":
					return e.SetAutoLayout(ctx, id, true)
				case "off":
					return e.SetAutoLayout(ctx, id, false)
				}
				return errors.New(errors.ErrCodeInvalidInput, "--auto must be on or off, got %q", auto)
			})
		},
	}

	cmd.Flags().StringVar(&mode, "growth", "", "growth mode: radial, right, left, left-right, manual")
	cmd.Flags().StringVar(&arrows, "arrows", "", "connector style: curved, straight")
	cmd.Flags().StringVar(&auto, "auto", "", "automatic layout: on, off")
	return cmd
}

// runEdit resolves ref in the scene, applies fn and saves the result.
// Rejected edits are reported as warnings and leave the scene unchanged.
func (c *CLI) runEdit(ctx context.Context, name, ref string, fn editFunc) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	h := runner.Host(name)
	objs, err := h.Objects(ctx)
	if err != nil {
		return err
	}
	id, err := resolveNode(objs, ref)
	if err != nil {
		return err
	}

	if err := fn(ctx, runner.Engine(h), id); err != nil {
		if errors.Is(err, errors.ErrCodeInvariantViolation) {
			printRejected(err)
			return nil
		}
		return err
	}
	if err := h.Flush(ctx); err != nil {
		return fmt.Errorf("save scene %s: %w", name, err)
	}
	printSuccess("Updated %s", StyleHighlight.Render(name))
	return nil
}
