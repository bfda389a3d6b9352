package models

import "time"

// Asset kinds used for preview/thumbnail dispatch. Classification itself
// happens in the upload pipeline; this core only carries the value.
const (
	AssetKindImage   = "image"
	AssetKindVideo   = "video"
	AssetKindAudio   = "audio"
	AssetKindPDF     = "pdf"
	AssetKindUnknown = "unknown"
)

// Asset is an uploaded file tied to a folder. Its create/replace/move
// lifecycle belongs to the upload pipeline; the folder core only reads
// assets for filename-conflict checks and delegates their deletion when a
// subtree is removed.
type Asset struct {
	ID           int64      `json:"id"`
	UID          string     `json:"uid"`
	FolderID     int64      `json:"folder_id"`
	Filename     string     `json:"filename"`
	Kind         string     `json:"kind"`
	Size         int64      `json:"size"`
	DateModified time.Time  `json:"date_modified"`
	DateDeleted  *time.Time `json:"date_deleted,omitempty"` // soft delete marker
}
