package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/store"
)

// newCommand creates a scene holding a single root node.
func (c *CLI) newCommand() *cobra.Command {
	var (
		mode  string
		arrow string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "new <scene> <root text>",
		Short: "Create a scene with a new mind map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := rootConfig(mode, arrow)
			if err != nil {
				return err
			}
			return c.runNew(cmd.Context(), args[0], args[1], rc, force)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "growth mode: radial, right, left, left-right, manual")
	cmd.Flags().StringVar(&arrow, "arrows", "", "connector style: curved, straight")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing scene")

	return cmd
}

func rootConfig(mode, arrow string) (scene.RootConfig, error) {
	var rc scene.RootConfig
	if mode != "" {
		gm, err := scene.ParseGrowthMode(mode)
		if err != nil {
			return rc, err
		}
		rc.GrowthMode = gm
	}
	if arrow != "" {
		style, err := parseArrowStyle(arrow)
		if err != nil {
			return rc, err
		}
		rc.ArrowStyle = style
	}
	return rc, nil
}

func parseArrowStyle(s string) (scene.ArrowStyle, error) {
	switch scene.ArrowStyle(s) {
	case scene.ArrowCurved, scene.ArrowStraight:
		return scene.ArrowStyle(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown arrow style %q (want curved or straight)", s)
}

func (c *CLI) runNew(ctx context.Context, name, text string, rc scene.RootConfig, force bool) error {
	if err := errors.ValidateSceneName(name); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	if _, err := runner.Store.Load(ctx, name); err == nil && !force {
		return fmt.Errorf("scene %q already exists (use --force to replace it)", name)
	}
	if err := runner.Store.Save(ctx, name, nil); err != nil {
		return fmt.Errorf("create scene %s: %w", name, err)
	}

	h := runner.Host(name)
	e := runner.Engine(h)
	id, err := e.NewRoot(ctx, text, 0, 0, rc)
	if err != nil {
		return err
	}
	if _, err := e.Layout(ctx, id, engine.LayoutOptions{}); err != nil {
		return err
	}
	if err := h.Flush(ctx); err != nil {
		return err
	}

	printSuccess("Created %s", StyleHighlight.Render(name))
	printKeyValue("root", id)
	printKeyValue("mode", rc.String())
	printNewline()
	printNextStep("Add a branch", fmt.Sprintf("%s add %s %s \"idea\"", appName, name, id[:8]))
	return nil
}

// importCommand stores a scene document read from a file.
func (c *CLI) importCommand() *cobra.Command {
	var layout bool

	cmd := &cobra.Command{
		Use:   "import <scene> <file.json>",
		Short: "Import a scene document into the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateSceneName(args[0]); err != nil {
				return err
			}
			objs, err := scene.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := runner.Store.Save(ctx, args[0], objs); err != nil {
				return err
			}
			printSuccess("Imported %d objects into %s", len(objs), StyleHighlight.Render(args[0]))
			if !layout {
				return nil
			}
			res, err := runner.Layout(ctx, pipeline.Options{Scene: args[0], Refresh: true})
			if err != nil {
				return err
			}
			printStats(res.Stats.Objects, res.Stats.Roots, res.CacheHit)
			return nil
		},
	}

	cmd.Flags().BoolVar(&layout, "layout", false, "lay out the scene after importing")
	return cmd
}

// exportCommand writes a stored scene as a JSON document.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <scene>",
		Short: "Export a scene document from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			objs, err := runner.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return scene.WriteObjects(os.Stdout, objs)
			}
			if err := scene.WriteFile(output, objs); err != nil {
				return err
			}
			printSuccess("Exported %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// layoutCommand lays out a stored scene.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout <scene>",
		Short: "Lay out every map of a scene",
		Long: `Lay out every map of a scene, or a single map with --root.

The first pass places nodes in the order the map implies; a second
stabilization pass keeps the manual sibling order. Results are cached by
scene content and layout configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scene = args[0]
			return c.runLayout(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.RootID, "root", "", "lay out only the map containing this node")
	cmd.Flags().BoolVar(&opts.ForceUngroup, "ungroup", false, "remove branch groups instead of rebuilding them")
	cmd.Flags().BoolVar(&opts.HonorManualOrder, "keep-order", false, "keep the stored sibling order in the first pass")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.RootID != "" {
		objs, err := runner.Load(ctx, opts.Scene)
		if err != nil {
			return err
		}
		if opts.RootID, err = resolveNode(objs, opts.RootID); err != nil {
			return err
		}
	}

	spin := startSpinner(ctx, os.Stderr, "Laying out "+opts.Scene+"...")
	prog := newProgress(c.Logger)

	res, err := runner.Layout(ctx, opts)
	if err != nil {
		spin.Fail("Layout failed")
		return err
	}
	spin.Stop()
	prog.done("layout finished", "scene", opts.Scene, "cached", res.CacheHit)

	printSuccess("Laid out %s", StyleHighlight.Render(opts.Scene))
	printStats(res.Stats.Objects, res.Stats.Roots, res.CacheHit)
	for _, rep := range res.Reports {
		if rep.Superseded {
			printDetail("%s: superseded by a newer layout", rep.RootID)
		}
	}
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s", appName, opts.Scene))
	return nil
}

// treeCommand prints the outline of a scene.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		showFolded bool
		showIDs    bool
	)

	cmd := &cobra.Command{
		Use:   "tree <scene>",
		Short: "Print the outline of every map in a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			objs, err := runner.Load(ctx, args[0])
			if err != nil {
				return err
			}
			rows := flattenTree(objs, showFolded)
			if len(rows) == 0 {
				printInfo("Scene %s has no maps", args[0])
				return nil
			}
			for _, r := range rows {
				fmt.Println(formatRow(r, showIDs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showFolded, "all", "a", false, "include the contents of folded branches")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "show node IDs")
	return cmd
}

// scenesCommand lists stored scenes.
func (c *CLI) scenesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := store.Open(ctx, c.settings.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

// resolveNode maps a user reference to a node ID. The reference may be a full
// ID, a unique ID prefix or a unique node label (case-insensitive).
func resolveNode(objs []*scene.Object, ref string) (string, error) {
	ix := hierarchy.Build(objs)
	nodes := ix.Nodes()

	var byPrefix, byLabel []string
	for _, id := range nodes {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			byPrefix = append(byPrefix, id)
		}
		if strings.EqualFold(nodeLabel(ix, ix.Node(id)), ref) {
			byLabel = append(byLabel, id)
		}
	}
	switch {
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) == 0 && len(byLabel) == 1:
		return byLabel[0], nil
	case len(byPrefix) > 1 || len(byLabel) > 1:
		return "", errors.New(errors.ErrCodeInvalidInput, "%q matches more than one node", ref)
	}
	return "", errors.New(errors.ErrCodeNodeNotFound, "no node matches %q", ref)
}
