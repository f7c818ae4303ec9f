package sqlite

// Schema DDL. Statements are idempotent so an existing database is reused.
const (
	createNodes = `CREATE TABLE IF NOT EXISTS nodes (
    node_id TEXT PRIMARY KEY,
    parent_id TEXT,
    type_name TEXT NOT NULL,
    name TEXT NOT NULL,
    title TEXT NOT NULL,
    sort_order INTEGER NOT NULL,
    visible INTEGER NOT NULL,
    authorized_roles TEXT NOT NULL,
    expires TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createNodeDetails = `CREATE TABLE IF NOT EXISTS node_details (
    node_id TEXT NOT NULL,
    detail_key TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    value_type TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (node_id, detail_key),
    FOREIGN KEY (node_id) REFERENCES nodes(node_id) ON DELETE CASCADE
);`
)

// Index DDL for tree walks and detail comparisons.
const (
	idxNodesParent      = `CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);`
	idxNodesType        = `CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type_name);`
	idxNodeDetailsValue = `CREATE INDEX IF NOT EXISTS idx_node_details_key_value ON node_details(detail_key, value);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createNodes,
	createNodeDetails,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxNodesParent,
	idxNodesType,
	idxNodeDetailsValue,
}

// nodeColumns is the column list shared by every node SELECT.
const nodeColumns = `node_id, parent_id, type_name, name, title, sort_order, visible,
    authorized_roles, expires, created_at, updated_at`

// subtreeCTE selects the ID of a node and all of its descendants.
const subtreeCTE = `WITH RECURSIVE subtree(node_id) AS (
    SELECT node_id FROM nodes WHERE node_id = ?
    UNION ALL
    SELECT n.node_id FROM nodes n JOIN subtree s ON n.parent_id = s.node_id
)`
