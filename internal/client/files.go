// ABOUTME: File endpoints: single and batch multipart uploads, downloads and deletes
// ABOUTME: Uploads stream each file from disk into a multipart body

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nilmcc/blogctl/internal/apperr"
)

// UploadFile sends a local file as the multipart field "file"
func (c *Client) UploadFile(ctx context.Context, path string) (*FileUploadResponse, error) {
	var out FileUploadResponse
	if err := c.upload(ctx, "/files/upload", "file", []string{path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadFiles sends several local files in one request as the field "files"
func (c *Client) UploadFiles(ctx context.Context, paths []string) ([]FileUploadResponse, error) {
	var out []FileUploadResponse
	if err := c.upload(ctx, "/files/upload-multiple", "files", paths, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadFile streams a stored file into w
func (c *Client) DownloadFile(ctx context.Context, name string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/files/download/"+url.PathEscape(name), nil), nil)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "download file", fmt.Errorf("failed to create request: %w", err))
	}
	return c.send(req, w)
}

// DeleteFile removes a stored file
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(name), nil, nil, nil)
}

func (c *Client) upload(ctx context.Context, path, field string, files []string, out any) error {
	op := "upload " + strings.Join(files, ", ")
	if len(files) == 0 {
		return apperr.New(apperr.KindValidation, op, "no files to upload")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := writeFilePart(mw, field, f); err != nil {
			return apperr.Wrap(apperr.KindValidation, op, err)
		}
	}
	if err := mw.Close(); err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path, nil), &buf)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

// writeFilePart adds one file with its sniffed content type
func writeFilePart(mw *multipart.Writer, field, path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(path)))
	h.Set("Content-Type", mtype.String())
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return nil
}
