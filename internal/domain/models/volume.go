package models

// Volume types supported by the storage registry.
const (
	VolumeTypeLocal = "local"
	VolumeTypeS3    = "s3"
)

// Volume is a configured storage backend that folders and assets physically
// reside in. Volumes are declared in configuration, not persisted.
type Volume struct {
	ID   int64  `json:"id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
	Type string `json:"type"`
}
