package remote

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// AvatarBucket is the storage bucket holding profile pictures.
const AvatarBucket = "avatars"

// UploadObject stores body under bucket/path, replacing any existing object.
func (c *Client) UploadObject(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	return c.do(ctx, "uploading object", request{
		method:      http.MethodPost,
		path:        "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapePath(path),
		reader:      body,
		contentType: contentType,
		authed:      true,
	}, nil)
}

// PublicURL is the address an uploaded object can be fetched from without credentials.
func (c *Client) PublicURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapePath(path)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
