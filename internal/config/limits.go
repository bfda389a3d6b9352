package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFilenameLength is the maximum length for asset filenames.
	// Conflict-resolved candidates are truncated to fit this before
	// their suffix and extension are appended.
	MaxFilenameLength = 255

	// MaxFilenameAttempts is how many numbered candidates the conflict
	// resolver tries after the timestamped base before giving up.
	MaxFilenameAttempts = 50

	// RandomSuffixLength is the number of random alphanumeric characters
	// appended to timestamped filename candidates.
	RandomSuffixLength = 4
)
