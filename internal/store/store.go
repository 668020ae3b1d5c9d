package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite form of a dataset: one nodes table holding the tree in
// adjacency-list form plus a metadata table.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS nodes (
  id              INTEGER PRIMARY KEY,
  parent_id       INTEGER REFERENCES nodes(id),
  position        INTEGER NOT NULL,
  token           INTEGER NOT NULL,
  guid            TEXT,
  name            TEXT NOT NULL,
  description     TEXT,
  project         BOOLEAN DEFAULT FALSE,
  size            INTEGER DEFAULT 0,
  contributors    TEXT,
  similar_groups  TEXT,
  parent_nodes    TEXT
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, position);
CREATE INDEX IF NOT EXISTS idx_nodes_token ON nodes(token);
`

// MetadataContentHash is the metadata key holding the tree hash written by
// WriteTree.
const MetadataContentHash = "content_hash"

// WriteTree replaces the stored tree with root inside a single transaction
// and records its content hash.
func (s *Store) WriteTree(root *Node) error {
	if root == nil {
		return fmt.Errorf("write tree: %w: no root node", ErrInvalidDataset)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write tree: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return fmt.Errorf("write tree: clear nodes: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO nodes
		(parent_id, position, token, guid, name, description, project, size,
		 contributors, similar_groups, parent_nodes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write tree: prepare: %w", err)
	}
	defer stmt.Close()

	var insert func(n *Node, parentID *int64, position int) error
	insert = func(n *Node, parentID *int64, position int) error {
		res, err := stmt.Exec(
			parentID, position, n.Token, string(n.GUID), n.Name, n.Description,
			n.Project, n.Size, marshalList(n.Contributors),
			marshalList(n.SimilarGroups), marshalList(n.ParentNodes),
		)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("node %q: last insert id: %w", n.Name, err)
		}
		for i, c := range n.Children {
			if err := insert(c, &id, i); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(root, nil, 0); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	if err := setMetadataTx(tx, MetadataContentHash, ComputeTreeHash(root)); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}
	return tx.Commit()
}

// nodeRow is one row of the nodes table before linking.
type nodeRow struct {
	id       int64
	parentID sql.NullInt64
	node     *Node
}

// ReadTree rebuilds the stored tree. Children are ordered by position.
func (s *Store) ReadTree() (*Node, error) {
	rows, err := s.db.Query(`SELECT id, parent_id, token, guid, name, description,
		project, size, contributors, similar_groups, parent_nodes
		FROM nodes ORDER BY parent_id IS NOT NULL, parent_id, position`)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	defer rows.Close()

	var all []nodeRow
	byID := make(map[int64]*Node)
	for rows.Next() {
		var (
			r                                   nodeRow
			guid, desc, contrib, similar, parts sql.NullString
			n                                   Node
		)
		if err := rows.Scan(&r.id, &r.parentID, &n.Token, &guid, &n.Name, &desc,
			&n.Project, &n.Size, &contrib, &similar, &parts); err != nil {
			return nil, fmt.Errorf("read tree: scan: %w", err)
		}
		n.GUID = ID(guid.String)
		n.Description = desc.String
		if n.Contributors, err = unmarshalList[string](contrib.String); err != nil {
			return nil, fmt.Errorf("read tree: node %d contributors: %w", r.id, err)
		}
		if n.SimilarGroups, err = unmarshalList[ID](similar.String); err != nil {
			return nil, fmt.Errorf("read tree: node %d similar_groups: %w", r.id, err)
		}
		if n.ParentNodes, err = unmarshalList[ID](parts.String); err != nil {
			return nil, fmt.Errorf("read tree: node %d parent_nodes: %w", r.id, err)
		}
		r.node = &n
		byID[r.id] = r.node
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tree: rows: %w", err)
	}

	var root *Node
	for _, r := range all {
		if !r.parentID.Valid {
			if root != nil {
				return nil, fmt.Errorf("read tree: %w: more than one root", ErrInvalidDataset)
			}
			root = r.node
			continue
		}
		parent, ok := byID[r.parentID.Int64]
		if !ok {
			return nil, fmt.Errorf("read tree: %w: node %q has missing parent %d",
				ErrInvalidDataset, r.node.Name, r.parentID.Int64)
		}
		parent.Children = append(parent.Children, r.node)
	}
	if root == nil {
		return nil, fmt.Errorf("read tree: %w: no root node", ErrInvalidDataset)
	}
	return root, nil
}

// GetMetadata returns the value stored under key, or "" if absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value.String, nil
}

// SetMetadata stores value under key, replacing any previous value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

func setMetadataTx(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
