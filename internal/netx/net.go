// Package netx holds outbound HTTP helpers.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ContentTypeZip is sent when uploading archives.
const ContentTypeZip = "application/zip"

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 4 << 10

// UploadPresigned PUTs size bytes from body to a presigned URL. A nil client
// means http.DefaultClient. Any non-2xx answer is an error quoting the
// start of the response body.
func UploadPresigned(ctx context.Context, client *http.Client, url, contentType string, body io.Reader, size int64) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
