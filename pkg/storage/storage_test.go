package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKey(t *testing.T) {
	const bucket = "claim-images"
	const baseURL = "https://cdn.claimguard.ng/images"

	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{"base url", "https://cdn.claimguard.ng/images/claims/abc.jpg", "claims/abc.jpg", false},
		{"base url with query", "https://cdn.claimguard.ng/images/claims/a%20b.jpg?token=x", "claims/a b.jpg", false},
		{"s3 uri", "s3://claim-images/claims/abc.jpg", "claims/abc.jpg", false},
		{"s3 uri other bucket", "s3://other/claims/abc.jpg", "", true},
		{"virtual hosted", "https://claim-images.s3.eu-west-1.amazonaws.com/claims/abc.jpg", "claims/abc.jpg", false},
		{"supabase public url", "https://xyz.supabase.co/storage/v1/object/public/claim-images/claims/abc.png", "claims/abc.png", false},
		{"bare key", "claims/abc.jpg", "claims/abc.jpg", false},
		{"bare key leading slash", "/claims/abc.jpg", "claims/abc.jpg", false},
		{"foreign host", "https://example.com/photos/abc.jpg", "", true},
		{"empty", "  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := resolveKey(bucket, baseURL, tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(bytes.NewReader([]byte("abcd")), 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	_, err = readLimited(strings.NewReader("abcde"), 4)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
