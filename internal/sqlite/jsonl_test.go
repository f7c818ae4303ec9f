package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

func TestJSONL_ExportImport(t *testing.T) {
	ctx := context.Background()
	src, root := newAttached(t, nil)

	deleted := time.Date(2026, 5, 6, 7, 8, 9, 10, time.UTC)
	top := page(root.NodeID, "Top")
	top.MarkThrown(types.ThrownInfo{FormerName: "Old", FormerParentID: "p", DeletedAt: deleted})
	top.Children = []*types.Node{page("", "Child")}
	require.NoError(t, src.Save(ctx, top))

	dir := t.TempDir()
	n, err := src.ExportJSONL(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(filepath.Join(dir, ExportFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.True(t, json.Valid([]byte(l)))
		assert.NotContains(t, l, `"children"`, "records are flat")
	}

	dst := NewBackend(nil)
	require.NoError(t, dst.Attach(testConfig(t.TempDir())))
	defer dst.Detach()

	imported, err := dst.ImportJSONL(ctx, filepath.Join(dir, ExportFile))
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	got, err := dst.Get(ctx, root.NodeID)
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	gotTop := got.Children[0]
	assert.Equal(t, top.NodeID, gotTop.NodeID)
	require.Len(t, gotTop.Children, 1)
	assert.Equal(t, "Child", gotTop.Children[0].Name)

	info, ok := gotTop.Thrown()
	require.True(t, ok)
	assert.Equal(t, "Old", info.FormerName)
	assert.Nil(t, info.FormerExpires)
	assert.True(t, deleted.Equal(info.DeletedAt))
	assert.True(t, top.CreatedAt.Equal(gotTop.CreatedAt))
}

func TestReadJSONL_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	content := `{"node_id":"a"}` + "\n\n" + `{not json` + "\n" + `{"node_id":"b"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriteJSONL_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"a":1}`)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.jsonl", entries[0].Name())
}
