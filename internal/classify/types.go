package classify

import "time"

// Status is the disposition of a single file after classification.
type Status string

const (
	// StatusNormal marks the canonical survivor of a content-hash group.
	StatusNormal Status = "normal"
	// StatusDuplicate marks a file whose content hash matches an earlier file.
	StatusDuplicate Status = "duplicate"
	// StatusInvalid marks a file that is not a decodable image in an
	// allowed format. Invalid files carry no hash or resolved time.
	StatusInvalid Status = "invalid"
)

// FileClassification describes one file found under the scanned root.
type FileClassification struct {
	SourcePath string
	Status     Status

	// ResolvedExtension is the canonical lowercase extension for the true
	// image format (sniffed from content, never from the file name).
	// Empty for invalid files.
	ResolvedExtension string

	// ContentHash is the lowercase hex SHA-256 of the file bytes.
	// Empty for invalid files.
	ContentHash string

	// ResolvedTime is the EXIF capture time when present, otherwise the
	// filesystem modification time.
	ResolvedTime time.Time

	// ChangeTime orders duplicates whose resolved times are equal.
	ChangeTime time.Time
}
