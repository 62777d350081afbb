package drive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"invoice-courier/internal/shared/telemetry"
	"invoice-courier/internal/storage"
)

const (
	folderMIMEType   = "application/vnd.google-apps.folder"
	documentMIMEType = "application/pdf"
)

// Gateway implements storage.Gateway against the Drive API.
type Gateway struct {
	svc *drive.Service
	now func() time.Time
}

// New builds a Drive-backed gateway using the given token source.
func New(ctx context.Context, ts oauth2.TokenSource) (*Gateway, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Gateway{svc: svc, now: time.Now}, nil
}

// EnsureFolder resolves each path segment under the previous one, creating
// missing folders as it descends.
func (g *Gateway) EnsureFolder(ctx context.Context, path []string) (storage.Folder, error) {
	if len(path) == 0 {
		return storage.Folder{}, fmt.Errorf("folder path is empty")
	}

	parent := ""
	for _, segment := range path {
		id, err := g.findFolder(ctx, parent, segment)
		if err != nil {
			return storage.Folder{}, fmt.Errorf("find folder %q: %w", segment, err)
		}
		if id == "" {
			id, err = g.createFolder(ctx, parent, segment)
			if err != nil {
				return storage.Folder{}, fmt.Errorf("create folder %q: %w", segment, err)
			}
		}
		parent = id
	}
	return storage.Folder{ID: parent}, nil
}

// Upload creates the document, grants public read access, and returns the
// share link. No compensating delete happens if the permission step fails.
func (g *Gateway) Upload(ctx context.Context, folder storage.Folder, fileName string, data []byte) (string, error) {
	meta := &drive.File{
		Name:    fileName,
		Parents: []string{folder.ID},
	}
	created, err := g.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create document %q: %w", fileName, err)
	}

	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := g.svc.Permissions.Create(created.Id, perm).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("grant public read on %s: %w", created.Id, err)
	}

	link := created.WebViewLink
	if link == "" {
		fetched, err := g.svc.Files.Get(created.Id).Fields("webViewLink").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("resolve share link for %s: %w", created.Id, err)
		}
		link = fetched.WebViewLink
	}
	return link, nil
}

// PruneOlderThan lists PDF documents directly inside the folder and deletes
// those created strictly before now minus age.
func (g *Gateway) PruneOlderThan(ctx context.Context, folder storage.Folder, age time.Duration) (int, error) {
	cutoff := g.now().Add(-age)
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false",
		escapeQuery(folder.ID), documentMIMEType)

	deleted := 0
	pageToken := ""
	for {
		call := g.svc.Files.List().
			Q(query).
			OrderBy("createdTime desc").
			Fields("nextPageToken, files(id, name, createdTime)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return deleted, fmt.Errorf("list folder %s: %w", folder.ID, err)
		}

		for _, f := range page.Files {
			old, err := createdBefore(f.CreatedTime, cutoff)
			if err != nil {
				telemetry.Error("storage.prune.bad_created_time", map[string]any{
					"file_id": f.Id,
					"name":    f.Name,
					"error":   err.Error(),
				})
				continue
			}
			if !old {
				continue
			}
			if err := g.svc.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
				telemetry.Error("storage.prune.delete_failed", map[string]any{
					"file_id": f.Id,
					"name":    f.Name,
					"error":   err.Error(),
				})
				continue
			}
			deleted++
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return deleted, nil
		}
	}
}

func (g *Gateway) findFolder(ctx context.Context, parent, name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		escapeQuery(name), folderMIMEType)
	if parent != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(parent))
	}

	page, err := g.svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(page.Files) == 0 {
		return "", nil
	}
	return page.Files[0].Id, nil
}

func (g *Gateway) createFolder(ctx context.Context, parent, name string) (string, error) {
	meta := &drive.File{Name: name, MimeType: folderMIMEType}
	if parent != "" {
		meta.Parents = []string{parent}
	}
	created, err := g.svc.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// createdBefore reports whether an RFC3339 creation time falls strictly
// before the cutoff.
func createdBefore(createdTime string, cutoff time.Time) (bool, error) {
	created, err := time.Parse(time.RFC3339, createdTime)
	if err != nil {
		return false, err
	}
	return created.Before(cutoff), nil
}

// escapeQuery escapes a value for embedding in a Drive search query.
func escapeQuery(val string) string {
	val = strings.ReplaceAll(val, `\`, `\\`)
	return strings.ReplaceAll(val, `'`, `\'`)
}

var _ storage.Gateway = (*Gateway)(nil)
