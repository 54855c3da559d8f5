package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/logger"
	"github.com/genrewiki/genrewiki-server/internal/overlay"
	"github.com/genrewiki/genrewiki-server/internal/seed"
	"github.com/genrewiki/genrewiki-server/internal/service"
)

var (
	seedForce bool
	treeJSON  bool

	seedCmd = &cobra.Command{
		Use:   "seed [taxonomy.yaml]",
		Short: "Merge a taxonomy document into the store",
		Long: `Drafts every genre of the document into one correction and merges it.
Without a file the embedded default taxonomy is used, and only when the store
has no genres yet unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSeed,
	}

	treeCmd = &cobra.Command{
		Use:   "tree <correction-id>",
		Short: "Print the genre tree as a correction would leave it",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}

	mergeCmd = &cobra.Command{
		Use:   "merge <correction-id>",
		Short: "Apply a correction to the base taxonomy",
		Args:  cobra.ExactArgs(1),
		RunE:  runMerge,
	}
)

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even when the store already has genres")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Print the tree as JSON")
}

func runSeed(cmd *cobra.Command, args []string) error {
	seeder, err := do.Invoke[*seed.Seeder](injector)
	if err != nil {
		return err
	}

	var res *service.MergeResult
	switch {
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read taxonomy: %w", err)
		}
		res, err = seeder.Seed(cmd.Context(), data, "Seed from "+args[0])
		if err != nil {
			return err
		}
	case seedForce:
		res, err = seeder.Seed(cmd.Context(), seed.DefaultTaxonomy(), "Default taxonomy")
		if err != nil {
			return err
		}
	default:
		res, err = seeder.SeedDefaults(cmd.Context())
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if res == nil {
		fmt.Fprintln(out, "Store already has genres; nothing seeded (use --force to seed anyway).")
		return nil
	}
	fmt.Fprintf(out, "Merged correction %s: %d genres created.\n", res.Correction.ID, len(res.Assigned))
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	corrections, err := do.Invoke[*service.CorrectionService](injector)
	if err != nil {
		return err
	}

	t, err := corrections.Tree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if treeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(t.All())
	}
	renderTree(cmd.OutOrStdout(), t)
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	corrections, err := do.Invoke[*service.CorrectionService](injector)
	if err != nil {
		return err
	}

	res, err := corrections.MergeCorrection(cmd.Context(), args[0])
	if err != nil {
		log := do.MustInvoke[*logger.Logger](injector)
		log.WithCorrection(args[0]).WithError(err).Warn("merge rejected")
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Merged correction %s (%d created, %d edited, %d deleted).\n",
		res.Correction.ID, len(res.Correction.Create), len(res.Correction.Edit), len(res.Correction.Delete))

	localIDs := make([]int, 0, len(res.Assigned))
	for localID := range res.Assigned {
		localIDs = append(localIDs, localID)
	}
	slices.Sort(localIDs)
	log := do.MustInvoke[*logger.Logger](injector).WithCorrection(res.Correction.ID)
	for _, localID := range localIDs {
		fmt.Fprintf(out, "  created:%d -> genre %d\n", localID, res.Assigned[localID])
		log.WithGenre(res.Assigned[localID]).Debug("genre created", "local_id", localID)
	}
	return nil
}

// renderTree prints the overlay as an indented outline. Changed roots come
// first. A genre with several parents is printed under each of them.
func renderTree(w io.Writer, t *overlay.Tree) {
	changed, unchanged := t.GroupRoots()

	var walk func(n *overlay.Node, depth int, path map[domain.GenreRef]bool)
	walk = func(n *overlay.Node, depth int, path map[domain.GenreRef]bool) {
		fmt.Fprintf(w, "%s%s%s [%s] (%s)\n", strings.Repeat("  ", depth), changeMarker(n.Tag), n.Name, n.Type, n.Ref)
		path[n.Ref] = true
		defer delete(path, n.Ref)
		for _, ref := range n.Children {
			child, err := t.Get(ref)
			if err != nil || path[ref] {
				continue
			}
			walk(child, depth+1, path)
		}
	}

	for _, root := range slices.Concat(changed, unchanged) {
		walk(root, 0, map[domain.GenreRef]bool{})
	}

	for _, id := range t.Deleted {
		fmt.Fprintf(w, "- deleted genre %d\n", id)
	}
	for _, warn := range t.Warnings {
		fmt.Fprintf(w, "! %s: %s %s -> %s\n", warn.Kind, warn.Relation, warn.Node, warn.Target)
	}
}

func changeMarker(tag domain.ChangeTag) string {
	switch tag {
	case domain.ChangeCreated:
		return "+ "
	case domain.ChangeEdited:
		return "~ "
	default:
		return ""
	}
}
