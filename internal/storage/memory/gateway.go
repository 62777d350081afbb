package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"invoice-courier/internal/storage"
)

// Document is a stored document in the in-memory gateway.
type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Link      string
}

// Gateway is an in-memory storage.Gateway used by tests.
type Gateway struct {
	mu      sync.Mutex
	folders map[string]string     // joined path -> folder id
	docs    map[string][]Document // folder id -> documents
	nextID  int

	// UploadErr, if set, makes Upload fail.
	UploadErr error
	// Now overrides the clock used for creation timestamps and pruning.
	Now func() time.Time
}

// NewGateway constructs an empty in-memory gateway.
func NewGateway() *Gateway {
	return &Gateway{
		folders: make(map[string]string),
		docs:    make(map[string][]Document),
	}
}

// EnsureFolder find-or-creates the folder for the joined path.
func (g *Gateway) EnsureFolder(ctx context.Context, path []string) (storage.Folder, error) {
	if err := ctx.Err(); err != nil {
		return storage.Folder{}, err
	}
	if len(path) == 0 {
		return storage.Folder{}, fmt.Errorf("folder path is empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.Join(path, "/")
	if id, ok := g.folders[key]; ok {
		return storage.Folder{ID: id}, nil
	}
	g.nextID++
	id := fmt.Sprintf("folder-%d", g.nextID)
	g.folders[key] = id
	return storage.Folder{ID: id}, nil
}

// Upload stores the document and returns a synthetic share link.
func (g *Gateway) Upload(ctx context.Context, folder storage.Folder, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.UploadErr != nil {
		return "", g.UploadErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	doc := Document{
		ID:        fmt.Sprintf("doc-%d", g.nextID),
		Name:      fileName,
		CreatedAt: g.clock()(),
	}
	doc.Link = "https://files.example/" + doc.ID
	g.docs[folder.ID] = append(g.docs[folder.ID], doc)
	return doc.Link, nil
}

// PruneOlderThan removes documents created strictly before now minus age.
func (g *Gateway) PruneOlderThan(ctx context.Context, folder storage.Folder, age time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.clock()().Add(-age)
	kept := g.docs[folder.ID][:0]
	deleted := 0
	for _, doc := range g.docs[folder.ID] {
		if doc.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	g.docs[folder.ID] = kept
	return deleted, nil
}

// Seed places a document with an explicit creation time into the folder.
func (g *Gateway) Seed(folder storage.Folder, name string, createdAt time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.docs[folder.ID] = append(g.docs[folder.ID], Document{
		ID:        fmt.Sprintf("doc-%d", g.nextID),
		Name:      name,
		CreatedAt: createdAt,
	})
}

// Documents returns a copy of the folder's documents.
func (g *Gateway) Documents(folder storage.Folder) []Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Document, len(g.docs[folder.ID]))
	copy(out, g.docs[folder.ID])
	return out
}

func (g *Gateway) clock() func() time.Time {
	if g.Now != nil {
		return g.Now
	}
	return time.Now
}

var _ storage.Gateway = (*Gateway)(nil)
