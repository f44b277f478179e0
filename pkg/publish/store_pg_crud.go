package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dd0wney/cluso-pdbgraph/pkg/contact"
)

// Edgelist is a stored edge list. Node numbers in Edges are 0-based, as in
// contact.Edge.
type Edgelist struct {
	ID             string
	PDBRef         string
	EdgelistType   string
	HydrogenStatus string
	Scaling        float32
	CreatedAt      time.Time
	Edges          []contact.Edge
}

// Deposit stores the artifact's edges and returns the new edge list id. It
// fails with ErrEdgelistExists if the key is already present.
func (s *PGStore) Deposit(ctx context.Context, a *Artifact) (string, error) {
	if err := a.validate(); err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	query := `
		INSERT INTO edgelists (id, pdbref, edgelisttype, hydrogenstatus, scaling, edge_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pdbref, edgelisttype, hydrogenstatus, scaling) DO NOTHING
	`
	tag, err := tx.Exec(ctx, query,
		id,
		a.PDBRef,
		string(a.Type),
		a.HydrogenStatus,
		a.Scaling,
		len(a.Edges),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create edge list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("%w: %s %s %s %v", ErrEdgelistExists, a.PDBRef, a.Type, a.HydrogenStatus, a.Scaling)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"edgelist_edges"},
		[]string{"edgelist_id", "seq", "from_node", "to_node", "weight"},
		pgx.CopyFromSlice(len(a.Edges), func(i int) ([]any, error) {
			e := a.Edges[i]
			return []any{id, int32(i), int32(e.From), int32(e.To), e.Weight}, nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to copy edges: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit edge list: %w", err)
	}
	return id, nil
}

// GetEdgelist retrieves the edge list stored under the given key.
func (s *PGStore) GetEdgelist(ctx context.Context, pdbref string, edgelistType contact.Type, hydrogenStatus string, scaling float32) (*Edgelist, error) {
	query := `
		SELECT id, pdbref, edgelisttype, hydrogenstatus, scaling, created_at
		FROM edgelists
		WHERE pdbref = $1 AND edgelisttype = $2 AND hydrogenstatus = $3 AND scaling = $4
	`

	el := &Edgelist{}
	err := s.pool.QueryRow(ctx, query, pdbref, string(edgelistType), hydrogenStatus, scaling).Scan(
		&el.ID,
		&el.PDBRef,
		&el.EdgelistType,
		&el.HydrogenStatus,
		&el.Scaling,
		&el.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s %s %v", ErrEdgelistNotFound, pdbref, edgelistType, hydrogenStatus, scaling)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get edge list: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT from_node, to_node, weight FROM edgelist_edges WHERE edgelist_id = $1 ORDER BY seq`,
		el.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to int32
		var e contact.Edge
		if err := rows.Scan(&from, &to, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.From, e.To = int(from), int(to)
		el.Edges = append(el.Edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}

	return el, nil
}

// DeleteEdgelist removes an edge list and its edges.
func (s *PGStore) DeleteEdgelist(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM edgelists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete edge list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrEdgelistNotFound, id)
	}
	return nil
}
