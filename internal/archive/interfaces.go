package archive

import "context"

// Archiver stores the original uploaded invoice image for later reference.
// This interface enables mocking and testing of storage operations.
type Archiver interface {
	// Store saves the image bytes and returns the URI they were written to.
	Store(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Nop is an Archiver that stores nothing, used when no bucket is configured.
type Nop struct{}

func (Nop) Store(ctx context.Context, data []byte, mimeType string) (string, error) {
	return "", nil
}
