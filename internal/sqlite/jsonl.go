package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// ExportFile is the name of the JSONL dump written by ExportJSONL.
const ExportFile = "nodes.jsonl"

// ExportJSONL writes every node, one flat JSON record per line, to
// dir/nodes.jsonl using the atomic write pattern. It returns the number of
// records written.
func (b *Backend) ExportJSONL(ctx context.Context, dir string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrBackendDetached
	}

	rows, err := b.db.QueryContext(ctx, "SELECT "+nodeColumns+" FROM nodes ORDER BY created_at ASC, node_id ASC")
	if err != nil {
		return 0, fmt.Errorf("querying nodes for JSONL: %w", err)
	}
	byID := make(map[string]*types.Node)
	var order []*types.Node
	for rows.Next() {
		n, err := hydrateNode(rows)
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning node for JSONL: %w", err)
		}
		byID[n.NodeID] = n
		order = append(order, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating nodes for JSONL: %w", err)
	}

	drows, err := b.db.QueryContext(ctx, "SELECT node_id, detail_key, value_type, value FROM node_details ORDER BY node_id, ordinal")
	if err != nil {
		return 0, fmt.Errorf("querying details for JSONL: %w", err)
	}
	for drows.Next() {
		var nodeID, key, valueType, raw string
		if err := drows.Scan(&nodeID, &key, &valueType, &raw); err != nil {
			drows.Close()
			return 0, fmt.Errorf("scanning detail for JSONL: %w", err)
		}
		v, err := types.DecodeValue(valueType, raw)
		if err != nil {
			drows.Close()
			return 0, err
		}
		if n, ok := byID[nodeID]; ok {
			if err := n.Details.Set(key, v); err != nil {
				drows.Close()
				return 0, err
			}
		}
	}
	drows.Close()
	if err := drows.Err(); err != nil {
		return 0, fmt.Errorf("iterating details for JSONL: %w", err)
	}

	records := make([]json.RawMessage, 0, len(order))
	for _, n := range order {
		data, err := json.Marshal(n)
		if err != nil {
			return 0, fmt.Errorf("marshaling node %s: %w", n.NodeID, err)
		}
		records = append(records, data)
	}
	if err := writeJSONL(filepath.Join(dir, ExportFile), records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ImportJSONL loads records written by ExportJSONL, inserting or replacing
// nodes in one transaction. Malformed lines are skipped. It returns the
// number of nodes imported.
func (b *Backend) ImportJSONL(ctx context.Context, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrBackendDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	count := 0
	for _, rec := range records {
		var n types.Node
		if err := json.Unmarshal(rec, &n); err != nil {
			continue
		}
		if n.NodeID == "" {
			continue
		}
		n.Children = nil
		if err := saveOne(ctx, tx, &n, now); err != nil {
			return 0, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return count, nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
