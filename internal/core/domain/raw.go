package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// RawDocument represents a text document supplied by a loader.
// It is transient: consumed once per indexing run, never persisted itself.
type RawDocument struct {
	// Path is the stable identifier of the document (file path, URI).
	Path string

	// Content is the full text content.
	Content string

	// ContentHash is the SHA-256 digest of Content, used for change
	// detection without comparing full text.
	ContentHash string
}

// NewRawDocument builds a RawDocument with its content hash computed.
func NewRawDocument(path, content string) RawDocument {
	return RawDocument{
		Path:        path,
		Content:     content,
		ContentHash: HashContent(content),
	}
}

// HashContent returns the hex-encoded SHA-256 digest of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Sentence is an ordered text span produced by segmentation.
// Sentences exist only within one indexing pass.
type Sentence struct {
	// Index is the position within the document's segmentation.
	Index int

	// Text is the sentence content.
	Text string
}

// DocState classifies a document for one indexing run by comparing its
// freshly computed content hash against the hash on record. This is a pure
// classification, not a temporal state machine: each document is classified
// exactly once per run.
type DocState int

const (
	// DocUnchanged means the recorded hash matches; the document is skipped.
	DocUnchanged DocState = iota

	// DocNew means no chunks are on record; chunks are inserted.
	DocNew

	// DocModified means the hash changed; chunks are replaced atomically.
	DocModified

	// DocRemoved means the document no longer exists; chunks are deleted.
	DocRemoved
)

// String returns the state name.
func (s DocState) String() string {
	switch s {
	case DocUnchanged:
		return "unchanged"
	case DocNew:
		return "new"
	case DocModified:
		return "modified"
	case DocRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Classify determines the state of a document given the hash on record.
// recordedHash is empty when the store has no chunks for the path.
func Classify(recordedHash, currentHash string) DocState {
	switch {
	case recordedHash == "":
		return DocNew
	case recordedHash == currentHash:
		return DocUnchanged
	default:
		return DocModified
	}
}
