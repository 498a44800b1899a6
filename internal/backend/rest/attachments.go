package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"kanban/internal/service"
)

// ListAttachments returns the attachment metadata for a task.
func (c *Client) ListAttachments(ctx context.Context, taskID string) ([]service.Attachment, error) {
	var attachments []service.Attachment
	if err := c.doJSON(ctx, http.MethodGet, "/attachments/task/"+pathID(taskID), nil, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

// UploadAttachment sends content as a multipart "file" field to
// POST /attachments/?task_id=. The part's content type is guessed from the
// filename's extension.
func (c *Client) UploadAttachment(ctx context.Context, taskID, filename string, content io.Reader) (service.Attachment, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreatePart(filePartHeader(filename))
	if err != nil {
		return service.Attachment{}, fmt.Errorf("failed to encode upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return service.Attachment{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return service.Attachment{}, fmt.Errorf("failed to encode upload: %w", err)
	}

	endpoint := "/attachments/?task_id=" + url.QueryEscape(taskID)
	raw, err := c.Do(ctx, endpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   &body,
		Header: http.Header{"Content-Type": {mw.FormDataContentType()}},
	})
	if err != nil {
		return service.Attachment{}, err
	}

	var attachment service.Attachment
	if err := json.Unmarshal(raw, &attachment); err != nil {
		return service.Attachment{}, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return attachment, nil
}

// DownloadAttachment copies an attachment's content to w and returns the
// number of bytes written.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID string, w io.Writer) (int64, error) {
	var n int64
	err := c.roundTrip(ctx, "/attachments/"+pathID(attachmentID), RequestOptions{}, func(body io.Reader) error {
		var err error
		n, err = io.Copy(w, body)
		return err
	})
	return n, err
}

// DeleteAttachment removes an attachment.
func (c *Client) DeleteAttachment(ctx context.Context, attachmentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/attachments/"+pathID(attachmentID), nil, nil)
}

func filePartHeader(filename string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filepath.Base(filename))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escaped))
	h.Set("Content-Type", contentType)
	return h
}
