package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/overlay"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "genrectl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)

	for _, name := range []string{"seed", "tree", "merge"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	for _, name := range []string{"store", "data-path", "log-level", "env-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestRenderTree(t *testing.T) {
	base := []*domain.Genre{
		{ID: 1, Type: domain.GenreTypeMeta, Name: "Rock", Children: []int{2, 4}},
		{ID: 2, Type: domain.GenreTypeStyle, Name: "Punk", Parents: []int{1}},
		{ID: 4, Type: domain.GenreTypeStyle, Name: "Shoegaze", Parents: []int{1}},
		{ID: 5, Type: domain.GenreTypeMeta, Name: "Jazz"},
		{ID: 6, Type: domain.GenreTypeMeta, Name: "Electronic"},
	}
	c := &domain.Correction{
		Create: []domain.CreatedGenre{{
			LocalID: 0,
			Data: domain.GenreDraft{
				Type:    domain.GenreTypeStyle,
				Name:    "Gothic Rock",
				Parents: []domain.GenreRef{domain.ExistingRef(2)},
			},
		}},
		Edit: []domain.EditedGenre{{
			TargetID: 4,
			Draft: domain.GenreDraft{
				Type:    domain.GenreTypeStyle,
				Name:    "Dream Pop",
				Parents: []domain.GenreRef{domain.ExistingRef(1)},
			},
		}},
		Delete: []int{6},
	}

	tree, err := overlay.Build(base, c)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderTree(&buf, tree)
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "Rock [META] (exists:1)", lines[0], "changed roots come first")
	assert.Contains(t, lines, "  Punk [STYLE] (exists:2)")
	assert.Contains(t, lines, "    + Gothic Rock [STYLE] (created:0)")
	assert.Contains(t, lines, "  ~ Dream Pop [STYLE] (exists:4)")
	assert.Contains(t, lines, "Jazz [META] (exists:5)")
	assert.Equal(t, "- deleted genre 6", lines[len(lines)-1])
	assert.NotContains(t, out, "Electronic")
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append([]string{
			"--store", "badger",
			"--data-path", dir,
			"--env-file", filepath.Join(dir, "missing.env"),
		}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}

	out, err := run("seed")
	require.NoError(t, err)
	assert.Contains(t, out, "genres created")

	out, err = run("seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	_, err = run("merge", "does-not-exist")
	assert.Error(t, err)
}
