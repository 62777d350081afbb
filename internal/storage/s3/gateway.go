package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"invoice-courier/internal/shared/telemetry"
	"invoice-courier/internal/shared/util"
	"invoice-courier/internal/storage"
)

const documentContentType = "application/pdf"

// Gateway implements storage.Gateway on top of an S3 bucket. Folders are key
// prefixes; the provider has no real hierarchy to create.
type Gateway struct {
	client *s3.Client
	bucket string
	region string
	prefix string
	now    func() time.Time
}

// New builds an S3-backed gateway.
func New(ctx context.Context, region, bucket, prefix string) (*Gateway, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if region == "" {
		region = cfg.Region
	}

	return &Gateway{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		prefix: normalizePrefix(prefix),
		now:    time.Now,
	}, nil
}

// EnsureFolder joins the path segments into a key prefix. Nothing is created
// remotely; S3 materializes prefixes when the first object is written.
func (g *Gateway) EnsureFolder(ctx context.Context, segments []string) (storage.Folder, error) {
	if err := ctx.Err(); err != nil {
		return storage.Folder{}, err
	}
	if len(segments) == 0 {
		return storage.Folder{}, fmt.Errorf("folder path is empty")
	}
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return storage.Folder{}, fmt.Errorf("folder path has an empty segment")
		}
	}
	return storage.Folder{ID: path.Join(segments...)}, nil
}

// Upload writes the document under the folder prefix with a public-read ACL
// and returns the bucket's public URL for the key.
func (g *Gateway) Upload(ctx context.Context, folder storage.Folder, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}

	key := applyPrefix(g.prefix, path.Join(folder.ID, sanitizedName))
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(documentContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object bucket=%s key=%s: %w", g.bucket, key, err)
	}
	return publicURL(g.bucket, g.region, key), nil
}

// PruneOlderThan deletes .pdf objects under the folder prefix last modified
// strictly before now minus age.
func (g *Gateway) PruneOlderThan(ctx context.Context, folder storage.Folder, age time.Duration) (int, error) {
	cutoff := g.now().Add(-age)
	keyPrefix := applyPrefix(g.prefix, folder.ID) + "/"

	deleted := 0
	var continuation *string
	for {
		page, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(g.bucket),
			Prefix:            aws.String(keyPrefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return deleted, fmt.Errorf("s3 list bucket=%s prefix=%s: %w", g.bucket, keyPrefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".pdf") {
				continue
			}
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if _, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(g.bucket),
				Key:    aws.String(key),
			}); err != nil {
				telemetry.Error("storage.prune.delete_failed", map[string]any{
					"key":   key,
					"error": err.Error(),
				})
				continue
			}
			deleted++
		}

		if page.NextContinuationToken == nil {
			return deleted, nil
		}
		continuation = page.NextContinuationToken
	}
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

func publicURL(bucket, region, key string) string {
	escaped := make([]string, 0, 4)
	for _, segment := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(segment))
	}
	host := fmt.Sprintf("%s.s3.amazonaws.com", bucket)
	if region != "" {
		host = fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region)
	}
	return fmt.Sprintf("https://%s/%s", host, strings.Join(escaped, "/"))
}

var _ storage.Gateway = (*Gateway)(nil)
