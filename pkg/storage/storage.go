package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// MaxImageBytes caps how much of a claim image is read into memory
const MaxImageBytes = 20 << 20

var (
	// ErrUnknownLocation is returned for image URLs that do not point into the
	// configured bucket
	ErrUnknownLocation = errors.New("image url does not belong to the claim bucket")
	// ErrImageTooLarge is returned when an object exceeds MaxImageBytes
	ErrImageTooLarge = errors.New("image exceeds maximum size")
)

// BlobStore is the claim image bucket
type BlobStore interface {
	// Download streams an object by key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// FetchURL reads the object an issued image URL points at
	FetchURL(ctx context.Context, imageURL string) ([]byte, error)
}

// resolveKey maps an issued image URL to an object key in bucket.
// Accepted forms: s3://bucket/key, URLs under baseURL, http(s) URLs whose path
// contains /bucket/ (path-style and Supabase public URLs) and bare keys
func resolveKey(bucket, baseURL, imageURL string) (string, error) {
	raw := strings.TrimSpace(imageURL)
	if raw == "" {
		return "", ErrUnknownLocation
	}

	if baseURL != "" {
		prefix := strings.TrimSuffix(baseURL, "/") + "/"
		if strings.HasPrefix(raw, prefix) {
			return unescapeKey(strings.TrimPrefix(raw, prefix))
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownLocation, err)
	}

	switch parsed.Scheme {
	case "":
		return strings.TrimPrefix(parsed.Path, "/"), nil
	case "s3":
		if parsed.Host != bucket {
			return "", fmt.Errorf("%w: bucket %q", ErrUnknownLocation, parsed.Host)
		}
		return strings.TrimPrefix(parsed.Path, "/"), nil
	case "http", "https":
		if strings.HasPrefix(parsed.Host, bucket+".") {
			return strings.TrimPrefix(parsed.Path, "/"), nil
		}
		marker := "/" + bucket + "/"
		if idx := strings.Index(parsed.Path, marker); idx >= 0 {
			return parsed.Path[idx+len(marker):], nil
		}
	}

	return "", ErrUnknownLocation
}

func unescapeKey(key string) (string, error) {
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	unescaped, err := url.PathUnescape(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownLocation, err)
	}
	return unescaped, nil
}

// readLimited reads all of r, failing once more than limit bytes are seen
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}
	return data, nil
}
