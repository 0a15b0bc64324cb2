package rewrite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/lestrrat-go/xmlshape"
	"github.com/lestrrat-go/xmlshape/node"
	"github.com/lestrrat-go/xmlshape/rewrite"
	"github.com/stretchr/testify/require"
)

const ymap = `<?xml version="1.0" encoding="UTF-8"?>
<CMapData>
  <name>test_map</name>
  <entities>
    <Item type="CEntityDef">
      <archetypeName>propA</archetypeName>
      <flags value="0"/>
      <lodDist>100</lodDist>
    </Item>
    <Item type="CEntityDef">
      <archetypeName>propB</archetypeName>
      <flags value="1"/>
      <lodDist value="50"/>
    </Item>
  </entities>
</CMapData>
`

func parse(t *testing.T, s string) *node.Document {
	t.Helper()
	doc, err := xmlshape.Parse(context.Background(), []byte(s))
	require.NoError(t, err, "xmlshape.Parse should succeed")
	return doc
}

func items(t *testing.T, doc *node.Document) []*node.Record {
	t.Helper()
	n, ok := node.Lookup(doc.Root(), "CMapData.entities.Item")
	require.True(t, ok)

	var list []*node.Record
	switch v := n.(type) {
	case *node.Record:
		list = append(list, v)
	case *node.Repeated:
		for _, item := range v.Items() {
			list = append(list, item.(*node.Record))
		}
	}
	return list
}

func TestNewFilter(t *testing.T) {
	_, err := rewrite.NewFilter("", "propA", []rewrite.Assignment{{Field: "flags", Value: "1"}})
	require.ErrorIs(t, err, rewrite.ErrNoFilterField)

	_, err = rewrite.NewFilter("archetypeName", "propA", nil)
	require.ErrorIs(t, err, rewrite.ErrNoAssignments)

	_, err = rewrite.NewFilter("archetypeName", "propA", []rewrite.Assignment{{Field: "archetypeName", Value: "propB"}})
	require.ErrorIs(t, err, rewrite.ErrAssignFilterField)

	_, err = rewrite.NewFilter("archetypeName", "propA", []rewrite.Assignment{{Value: "1"}})
	require.ErrorIs(t, err, rewrite.ErrEmptyAssignment)

	f, err := rewrite.NewFilter("archetypeName", "propA", []rewrite.Assignment{{Field: "flags", Value: "1"}})
	require.NoError(t, err)
	require.Equal(t, "archetypeName", f.Field())
	require.Equal(t, "propA", f.Value())
	require.Equal(t, []rewrite.Assignment{{Field: "flags", Value: "1"}}, f.Assignments())
}

func TestAssignmentsFromMap(t *testing.T) {
	list := rewrite.AssignmentsFromMap(map[string]string{"lodDist": "300", "flags": "545"})
	require.Equal(t, []rewrite.Assignment{
		{Field: "flags", Value: "545"},
		{Field: "lodDist", Value: "300"},
	}, list)
	require.Equal(t, "flags=545", list[0].String())
}

func TestFilterApply(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleMatch", func(t *testing.T) {
		doc := parse(t, ymap)
		report, err := rewrite.RewriteByFilter(ctx, doc, "archetypeName", "propA", map[string]string{
			"flags":   "545",
			"lodDist": "300",
		})
		require.NoError(t, err)
		require.Equal(t, 1, report.Matched)
		require.Equal(t, map[string]int{"flags": 1, "lodDist": 1}, report.Fields)
		require.Empty(t, report.Created)
		require.Equal(t, 2, report.Mutations())

		list := items(t, doc)
		require.Len(t, list, 2)

		flags, _ := list[0].Get("flags")
		require.Equal(t, "545", valueOf(t, flags))
		lodDist, _ := list[0].Get("lodDist")
		require.Equal(t, "300", valueOf(t, lodDist), "scalar lodDist becomes a value record")

		// the other entity is untouched
		flags, _ = list[1].Get("flags")
		require.Equal(t, "1", valueOf(t, flags))
		lodDist, _ = list[1].Get("lodDist")
		require.Equal(t, "50", valueOf(t, lodDist))
	})

	t.Run("NoMatch", func(t *testing.T) {
		doc := parse(t, ymap)
		before, err := xmlshape.Serialize(doc)
		require.NoError(t, err)

		report, err := rewrite.RewriteByFilter(ctx, doc, "archetypeName", "propZ", map[string]string{"flags": "545"})
		require.NoError(t, err)
		require.Equal(t, 0, report.Matched)
		require.Equal(t, 0, report.Mutations())

		after, err := xmlshape.Serialize(doc)
		require.NoError(t, err)
		require.Equal(t, string(before), string(after))
		require.True(t, node.EqualDocuments(parse(t, ymap), parse(t, string(after))))
	})

	t.Run("FilterFieldUnchanged", func(t *testing.T) {
		doc := parse(t, ymap)
		f, err := rewrite.NewFilter("archetypeName", "propB", []rewrite.Assignment{
			{Field: "flags", Value: "2"},
			{Field: "extra", Value: "x"},
		})
		require.NoError(t, err)

		report := f.Apply(ctx, doc)
		require.Equal(t, 1, report.Matched)
		require.Equal(t, map[string]int{"extra": 1}, report.Created)
		require.Equal(t, map[string]int{"flags": 1, "extra": 1}, report.Fields)

		for _, rec := range items(t, doc) {
			n, _ := rec.Get("archetypeName")
			require.Equal(t, node.ScalarKind, n.Kind())
		}

		// the same filter over the output selects the same records
		out, err := xmlshape.Serialize(doc)
		require.NoError(t, err)
		again := f.Apply(ctx, parse(t, string(out)))
		require.Equal(t, report.Matched, again.Matched)
		require.Empty(t, again.Created)
	})

	t.Run("DepthIndependence", func(t *testing.T) {
		var b strings.Builder
		b.WriteString(`<root><Item><archetypeName>propA</archetypeName><flags value="0"/></Item>`)
		for range 5 {
			b.WriteString(`<level>`)
		}
		b.WriteString(`<Item><archetypeName>propA</archetypeName><flags value="0"/></Item>`)
		for range 5 {
			b.WriteString(`</level>`)
		}
		b.WriteString(`</root>`)

		doc := parse(t, b.String())
		report, err := rewrite.RewriteByFilter(ctx, doc, "archetypeName", "propA", map[string]string{"flags": "545"})
		require.NoError(t, err)
		require.Equal(t, 2, report.Matched)
		require.Equal(t, 2, report.Fields["flags"])

		shallow, ok := node.Lookup(doc.Root(), "root.Item.flags")
		require.True(t, ok)
		deep, ok := node.Lookup(doc.Root(), "root.level.level.level.level.level.Item.flags")
		require.True(t, ok)
		require.True(t, node.Equal(shallow, deep))
	})

	t.Run("RepeatedField", func(t *testing.T) {
		doc := parse(t, `<root><Item><archetypeName>propA</archetypeName><name>a</name><name>b</name><name>c</name></Item></root>`)
		report, err := rewrite.RewriteByFilter(ctx, doc, "archetypeName", "propA", map[string]string{"name": "z"})
		require.NoError(t, err)
		require.Equal(t, 1, report.Matched)
		require.Equal(t, 3, report.Fields["name"])

		n, ok := node.Lookup(doc.Root(), "root.Item.name")
		require.True(t, ok)
		list, ok := n.(*node.Repeated)
		require.True(t, ok)
		require.Equal(t, 3, list.Len())
		for _, item := range list.Items() {
			require.Equal(t, "z", valueOf(t, item))
		}
	})

	t.Run("NestedMatches", func(t *testing.T) {
		doc := parse(t, `<root><Item><archetypeName>propA</archetypeName><children><Item><archetypeName>propA</archetypeName></Item></children></Item></root>`)
		report, err := rewrite.RewriteByFilter(ctx, doc, "archetypeName", "propA", map[string]string{"flags": "1"})
		require.NoError(t, err)
		require.Equal(t, 2, report.Matched)
		require.Equal(t, 2, report.Created["flags"])
	})

	t.Run("MissingSkip", func(t *testing.T) {
		doc := parse(t, ymap)
		f, err := rewrite.NewFilter("archetypeName", "propA",
			[]rewrite.Assignment{{Field: "flags", Value: "545"}, {Field: "extra", Value: "x"}},
			rewrite.WithMissingField(rewrite.MissingSkip),
		)
		require.NoError(t, err)

		report := f.Apply(ctx, doc)
		require.Equal(t, map[string]int{"flags": 1}, report.Fields)
		require.False(t, items(t, doc)[0].Has("extra"))
	})

	t.Run("ValueRecordFilter", func(t *testing.T) {
		doc := parse(t, `<root><Item><archetypeName value="propA"/><flags value="0"/></Item></root>`)
		report, err := rewrite.RewriteByFilter(ctx, doc, "archetypeName", "propA", map[string]string{"flags": "3"})
		require.NoError(t, err)
		require.Equal(t, 1, report.Matched)
	})

	t.Run("NilDocument", func(t *testing.T) {
		f, err := rewrite.NewFilter("archetypeName", "propA", []rewrite.Assignment{{Field: "flags", Value: "1"}})
		require.NoError(t, err)
		require.Equal(t, 0, f.Apply(ctx, nil).Matched)
	})
}
