package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

func chainTree() *taxonomy.CanonicalTree {
	return taxonomy.NewCanonicalTree(&taxonomy.TaxonNode{Name: "root", Children: []*taxonomy.TaxonNode{
		{Name: "A", Children: []*taxonomy.TaxonNode{
			{Name: "B", Children: []*taxonomy.TaxonNode{
				{Name: "Panthera tigris sumatrae"},
			}},
			{Name: "Helarctos malayanus"},
		}},
		{Name: "C", Children: []*taxonomy.TaxonNode{
			{Name: "Varanus komodoensis"},
		}},
	}})
}

func TestFindCaseInsensitive(t *testing.T) {
	s := Find(chainTree(), "panthera tigris sumatrae")

	require.True(t, s.Matched())
	assert.Equal(t, "Panthera tigris sumatrae", s.Target)
	assert.Equal(t, []string{"root", "A", "B", "Panthera tigris sumatrae"}, s.Path)
	assert.Equal(t, map[string]struct{}{
		"root": {}, "A": {}, "B": {}, "Panthera tigris sumatrae": {},
	}, s.Ancestors())
	assert.Empty(t, s.Message())
}

func TestFindNormalizesQuery(t *testing.T) {
	s := Find(chainTree(), "  Panthera_Tigris_sumatrae ")
	assert.Equal(t, "Panthera tigris sumatrae", s.Target)
}

func TestFindNoMatch(t *testing.T) {
	s := Find(chainTree(), "Nonexistent species")

	assert.False(t, s.Matched())
	assert.Empty(t, s.Ancestors())
	assert.Empty(t, s.Path)
	assert.False(t, s.Has("root"))
	assert.Equal(t, NoMatchMessage, s.Message())
	assert.Equal(t, TierLeaf, s.NodeTier("Varanus komodoensis", true))
	assert.Equal(t, TierInternal, s.NodeTier("root", false))
	assert.Equal(t, TierDefault, s.EdgeTier("root", "A"))
}

func TestFindEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   "} {
		s := Find(chainTree(), q)
		assert.False(t, s.Matched())
		assert.Empty(t, s.Message(), "no message without a selection")
	}
	assert.False(t, Find(nil, "A").Matched())
}

func TestFindInternalNode(t *testing.T) {
	s := Find(chainTree(), "a")
	assert.Equal(t, "A", s.Target)
	assert.Equal(t, []string{"root", "A"}, s.Path)
}

func TestFindPreorderTieBreak(t *testing.T) {
	// Duplicate names across different parents are legal; the first in
	// pre-order wins.
	tree := taxonomy.NewCanonicalTree(&taxonomy.TaxonNode{Name: "root", Children: []*taxonomy.TaxonNode{
		{Name: "X", Children: []*taxonomy.TaxonNode{{Name: "dup"}}},
		{Name: "Y", Children: []*taxonomy.TaxonNode{{Name: "dup"}}},
	}})
	s := Find(tree, "dup")
	assert.Equal(t, []string{"root", "X", "dup"}, s.Path)
	assert.False(t, s.Has("Y"))
}

func TestTiers(t *testing.T) {
	s := Find(chainTree(), "Panthera tigris sumatrae")

	assert.Equal(t, TierTarget, s.NodeTier("Panthera tigris sumatrae", true))
	assert.Equal(t, TierLeaf, s.NodeTier("PANTHERA TIGRIS SUMATRAE", true))
	assert.Equal(t, TierPath, s.NodeTier("B", false))
	assert.Equal(t, TierPath, s.NodeTier("root", false))
	assert.Equal(t, TierLeaf, s.NodeTier("Helarctos malayanus", true))
	assert.Equal(t, TierInternal, s.NodeTier("C", false))

	assert.Equal(t, TierPath, s.EdgeTier("A", "B"))
	assert.Equal(t, TierPath, s.EdgeTier("B", "Panthera tigris sumatrae"))
	assert.Equal(t, TierDefault, s.EdgeTier("A", "Helarctos malayanus"))
	assert.Equal(t, TierDefault, s.EdgeTier("root", "C"))
}

func TestEndToEndScenario(t *testing.T) {
	raw, err := taxonomy.Parse([]byte(`{"name":"Life","tree":{"branch_length":0,"children":[
		{"children":[{"name":"Mammalia","branch_length":1,"children":[
			{"name":"Panthera_tigris_sumatrae","branch_length":2}]}]}]}}`), "scenario")
	require.NoError(t, err)

	s := Find(taxonomy.Normalize(raw, nil), "Panthera tigris sumatrae")
	assert.Equal(t, "Panthera tigris sumatrae", s.Target)
	assert.Equal(t, map[string]struct{}{
		"Life": {}, "Mammalia": {}, "Panthera tigris sumatrae": {},
	}, s.Ancestors())
}

func TestTiersIgnoreCaseVariants(t *testing.T) {
	tree := taxonomy.NewCanonicalTree(&taxonomy.TaxonNode{Name: "root", Children: []*taxonomy.TaxonNode{
		{Name: "Felidae", Children: []*taxonomy.TaxonNode{{Name: "Panthera tigris"}}},
		{Name: "Misfiled", Children: []*taxonomy.TaxonNode{{Name: "panthera Tigris"}}},
	}})

	s := Find(tree, "panthera tigris")
	require.Equal(t, "Panthera tigris", s.Target)

	assert.Equal(t, TierTarget, s.NodeTier("Panthera tigris", true))
	assert.Equal(t, TierLeaf, s.NodeTier("panthera Tigris", true))
	assert.Equal(t, TierInternal, s.NodeTier("Misfiled", false))
	assert.Equal(t, TierDefault, s.EdgeTier("Misfiled", "panthera Tigris"))
}

func TestFindSurvivesMalformedFields(t *testing.T) {
	raw, err := taxonomy.Parse([]byte(`{"name":"Life","tree":{"children":[
		{"children":[
			{"name":"Mammalia","branch_length":"1","children":[{"name":"Panthera_tigris_sumatrae"}]},
			{"name":"Aves","branch_length":"long","children":[{"name":"Aquila_chrysaetos"}]},
			{"name":"Reptilia","children":"oops"}]}]}}`), "malformed-fields")
	require.NoError(t, err)
	tree := taxonomy.Normalize(raw, nil)

	s := Find(tree, "Panthera tigris sumatrae")
	require.True(t, s.Matched())
	assert.Equal(t, []string{"Life", "Mammalia", "Panthera tigris sumatrae"}, s.Path)

	// A species below a parent with an unusable length is still reachable.
	s = Find(tree, "Aquila chrysaetos")
	assert.Equal(t, []string{"Life", "Aves", "Aquila chrysaetos"}, s.Path)

	s = Find(tree, "Reptilia")
	require.True(t, s.Matched())
	assert.Equal(t, TierTarget, s.NodeTier("Reptilia", true))

	mammalia := tree.Root.Children[0]
	require.NotNil(t, mammalia.BranchLength)
	assert.Equal(t, 1.0, *mammalia.BranchLength)
	assert.Len(t, tree.Warnings(), 2)
}
