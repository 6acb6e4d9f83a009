package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// UploadResult is the storage API's answer to a multipart upload.
type UploadResult struct {
	ContentID string `json:"contentId"`
	URL       string `json:"url,omitempty"`
}

// File is one part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Upload streams files to path as multipart/form-data with scope's bearer token.
func (c *Client) Upload(ctx context.Context, scope Scope, path string, files ...File) (UploadResult, error) {
	if err := scope.Check(); err != nil {
		return UploadResult{}, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, files))
	}()

	var out UploadResult
	err := c.Do(ctx, scope, Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        io.Reader(pr),
		ContentType: mw.FormDataContentType(),
	}, &out)
	// Unblock the writer goroutine if the request ended before the body was drained.
	_ = pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

func writeParts(mw *multipart.Writer, files []File) error {
	for _, f := range files {
		field := f.Field
		if field == "" {
			field = "file"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(field), escapeQuotes(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
