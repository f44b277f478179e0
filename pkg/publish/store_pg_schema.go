package publish

import "context"

// migrate creates the edge list tables
func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS edgelists (
		id TEXT PRIMARY KEY,
		pdbref TEXT NOT NULL,
		edgelisttype TEXT NOT NULL,
		hydrogenstatus TEXT NOT NULL,
		scaling REAL NOT NULL,
		edge_count INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (pdbref, edgelisttype, hydrogenstatus, scaling)
	);

	CREATE TABLE IF NOT EXISTS edgelist_edges (
		edgelist_id TEXT NOT NULL REFERENCES edgelists(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		from_node INTEGER NOT NULL,
		to_node INTEGER NOT NULL,
		weight REAL NOT NULL,
		PRIMARY KEY (edgelist_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_edgelists_pdbref ON edgelists(pdbref);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
