package models

import (
	"database/sql"
	"time"
)

// Folder is a node in the logical asset hierarchy, mapping to a physical
// directory on a volume.
//
// Path is the full slash-terminated path from the volume root ("a/b/c/");
// a root folder has an empty path. The path of a child is always its
// parent's path followed by the child's name and a slash.
type Folder struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	ParentID  *int64    `json:"parent_id"` // nil only for root folders
	VolumeID  *int64    `json:"volume_id"` // nil for the synthetic temp root
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FolderCriteria is a structured filter for folder queries. Nil fields mean
// "no constraint on that field"; the *sql.NullInt64 fields distinguish
// "match NULL" (Valid=false) from "match this id" (Valid=true).
type FolderCriteria struct {
	ID         []int64        // one or more ids (set match)
	UID        *string        // exact or comma-separated multi-value
	VolumeID   *sql.NullInt64 // id match, or IS NULL when invalid
	ParentID   *sql.NullInt64 // id match, or IS NULL when invalid
	HasParent  *bool          // parent_id IS (NOT) NULL regardless of value
	Name       *string        // exact or comma-separated multi-value
	Path       *string        // literal match; commas are escaped by the store
	PathPrefix *string        // path LIKE prefix% (descendant lookups)
	Order      string         // whitelisted column, optionally "col DESC"
	Offset     int
	Limit      int
}

// NullID builds a NullInt64 criterion matching the given id.
func NullID(id int64) *sql.NullInt64 {
	return &sql.NullInt64{Int64: id, Valid: true}
}

// IsNull builds a NullInt64 criterion matching NULL.
func IsNull() *sql.NullInt64 {
	return &sql.NullInt64{}
}

// FolderTreeNode represents a folder in a materialized tree with nested
// children.
type FolderTreeNode struct {
	ID       int64             `json:"id"`
	UID      string            `json:"uid"`
	ParentID *int64            `json:"parent_id"`
	VolumeID *int64            `json:"volume_id"`
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Children []*FolderTreeNode `json:"children"`
}
