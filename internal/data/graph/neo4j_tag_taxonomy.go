package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/platform/neo4jdb"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// TagGraph mirrors the tag hierarchy into Neo4j as (:Tag)-[:CHILD_OF]->(:Tag)
// edges. The relational store stays the source of truth; every method here is
// safe to call with a nil receiver or nil client, in which case it is a no-op.
type TagGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger

	schemaOnce sync.Once
}

func NewTagGraph(client *neo4jdb.Client, log *logger.Logger) *TagGraph {
	if client == nil || client.Driver == nil {
		return nil
	}
	return &TagGraph{client: client, log: log.With("graph", "TagGraph")}
}

func (g *TagGraph) enabled() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

func (g *TagGraph) session(ctx context.Context) neo4j.SessionWithContext {
	return g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.client.Database,
	})
}

func (g *TagGraph) ensureSchema(ctx context.Context) {
	g.schemaOnce.Do(func() {
		session := g.session(ctx)
		defer session.Close(ctx)
		stmts := []string{
			`CREATE CONSTRAINT tag_id_unique IF NOT EXISTS FOR (t:Tag) REQUIRE t.id IS UNIQUE`,
			`CREATE INDEX tag_name_index IF NOT EXISTS FOR (t:Tag) ON (t.name)`,
		}
		for _, q := range stmts {
			if res, err := session.Run(ctx, q, nil); err != nil {
				if g.log != nil {
					g.log.Warn("neo4j schema init failed (continuing)", "error", err)
				}
			} else {
				_, _ = res.Consume(ctx)
			}
		}
	})
}

func tagProps(t *types.Tag) map[string]any {
	parentID := ""
	if t.ParentID != nil {
		parentID = t.ParentID.String()
	}
	return map[string]any{
		"id":        t.ID.String(),
		"name":      t.Name,
		"parent_id": parentID,
		"level":     int64(t.Level),
		"path":      t.Path,
		"category":  t.Category,
		"domain":    t.Domain,
		"status":    t.Status,
		"synced_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// UpsertTag writes the node and, when the tag has a parent, replaces its
// CHILD_OF edge so the graph always holds at most one parent per tag.
func (g *TagGraph) UpsertTag(ctx context.Context, tag *types.Tag) error {
	if !g.enabled() || tag == nil || tag.ID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	g.ensureSchema(ctx)

	session := g.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (t:Tag {id: $props.id})
SET t += $props
`, map[string]any{"props": tagProps(tag)})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
MATCH (t:Tag {id: $id})-[e:CHILD_OF]->()
DELETE e
`, map[string]any{"id": tag.ID.String()})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if tag.ParentID == nil {
			return nil, nil
		}
		res, err = tx.Run(ctx, `
MATCH (t:Tag {id: $id})
MERGE (p:Tag {id: $parent_id})
MERGE (t)-[:CHILD_OF]->(p)
`, map[string]any{"id": tag.ID.String(), "parent_id": tag.ParentID.String()})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// RecordMerge detaches the source from the tree and points it at the merge
// target with a MERGED_INTO edge. The node is kept so old references resolve.
func (g *TagGraph) RecordMerge(ctx context.Context, sourceID, targetID uuid.UUID) error {
	if !g.enabled() || sourceID == uuid.Nil || targetID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	g.ensureSchema(ctx)

	session := g.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (s:Tag {id: $source_id})
OPTIONAL MATCH (s)-[e:CHILD_OF]->()
DELETE e
SET s.status = $status, s.synced_at = $synced_at
WITH s
MERGE (t:Tag {id: $target_id})
MERGE (s)-[:MERGED_INTO]->(t)
`, map[string]any{
			"source_id": sourceID.String(),
			"target_id": targetID.String(),
			"status":    types.TagStatusMerged,
			"synced_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// RemoveTag marks the node deleted and detaches it from its parent. Nodes are
// never hard-deleted so the history side stays resolvable.
func (g *TagGraph) RemoveTag(ctx context.Context, tagID uuid.UUID) error {
	if !g.enabled() || tagID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	g.ensureSchema(ctx)

	session := g.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (t:Tag {id: $id})
OPTIONAL MATCH (t)-[e:CHILD_OF]->()
DELETE e
SET t.status = $status, t.synced_at = $synced_at
`, map[string]any{
			"id":        tagID.String(),
			"status":    types.TagStatusDeleted,
			"synced_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
