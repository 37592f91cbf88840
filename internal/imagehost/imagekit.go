package imagehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client uploads assets to an ImageKit-compatible media host and derives
// transformed CDN URLs for them.
type Client struct {
	httpClient  *http.Client
	privateKey  string
	uploadURL   string
	urlEndpoint string
}

// NewClient creates a new image host client
func NewClient(privateKey, uploadURL, urlEndpoint string, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		privateKey:  privateKey,
		uploadURL:   uploadURL,
		urlEndpoint: strings.TrimRight(urlEndpoint, "/"),
	}
}

type uploadResponse struct {
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
	Message  string `json:"message"`
}

// Upload stores the asset under the given folder and returns its file path
func (c *Client) Upload(ctx context.Context, data []byte, fileName, folder string) (string, error) {
	var body strings.Builder
	writer := multipart.NewWriter(&body)

	filePart, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := filePart.Write(data); err != nil {
		return "", err
	}
	if err := writer.WriteField("fileName", fileName); err != nil {
		return "", err
	}
	if err := writer.WriteField("folder", folder); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, strings.NewReader(body.String()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", context.DeadlineExceeded
		}
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image upload failed: status %d: %s", resp.StatusCode, respBody)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if parsed.FilePath == "" {
		return "", fmt.Errorf("image upload failed: empty file path in response")
	}
	return parsed.FilePath, nil
}

// TransformedURL derives a CDN URL for a stored file path, constrained to
// the given width with webp format and automatic quality.
func (c *Client) TransformedURL(filePath string, width int) string {
	if !strings.HasPrefix(filePath, "/") {
		filePath = "/" + filePath
	}
	return fmt.Sprintf("%s/tr:w-%d,q-auto,f-webp%s", c.urlEndpoint, width, filePath)
}
