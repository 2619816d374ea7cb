package session

import (
	"fmt"
	"sync"
)

// Artifact is an ephemeral document held by a session: either a generated
// preview or an operator-supplied signed file. The bytes are only reachable
// while the handle is live; Close releases them and is safe to call more
// than once.
type Artifact struct {
	mu       sync.Mutex
	filename string
	mimeType string
	data     []byte
	released bool
}

// NewArtifact wraps document bytes in a releasable handle
func NewArtifact(data []byte, filename, mimeType string) *Artifact {
	return &Artifact{
		filename: filename,
		mimeType: mimeType,
		data:     data,
	}
}

// Bytes returns the document content, or an error after release
func (a *Artifact) Bytes() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil, fmt.Errorf("artifact %q has been released", a.filename)
	}
	return a.data, nil
}

// Filename returns the name the artifact will be committed under
func (a *Artifact) Filename() string {
	return a.filename
}

// MimeType returns the artifact's content type
func (a *Artifact) MimeType() string {
	return a.mimeType
}

// Live reports whether the handle still holds its bytes
func (a *Artifact) Live() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.released
}

// Close releases the held bytes. Idempotent.
func (a *Artifact) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = nil
	a.released = true
	return nil
}
