package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
)

// AltParserClient calls the alternate-parser service: a second, independent
// text extractor consulted when native extraction comes up short.
type AltParserClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAltParserClient creates a client for the alternate parser service.
func NewAltParserClient(baseURL string, timeout time.Duration) *AltParserClient {
	return &AltParserClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Parse submits raw document bytes and returns the extracted plain text.
func (c *AltParserClient) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	body, contentType, err := multipartFile(data, filename, nil)
	if err != nil {
		return "", fmt.Errorf("alt-parser: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/parse", body)
	if err != nil {
		return "", fmt.Errorf("alt-parser: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("alt-parser: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("alt-parser: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("alt-parser: service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("alt-parser: parse response: %w", err)
	}
	return parsed.Text, nil
}

// RasterizerClient calls the rasterization service that renders document
// pages to PNG images. Consumed only when both text strategies failed.
type RasterizerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRasterizerClient creates a client for the rasterization service.
func NewRasterizerClient(baseURL string, timeout time.Duration) *RasterizerClient {
	return &RasterizerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PDFToImages uploads the document at path and returns one image per page.
func (c *RasterizerClient) PDFToImages(ctx context.Context, path string) ([]domain.PageImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: read file: %w", err)
	}

	body, contentType, err := multipartFile(data, filepath.Base(path), nil)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/rasterize", body)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rasterizer: service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Pages []struct {
			Page   int    `json:"page"`
			PNG    string `json:"png_base64"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("rasterizer: parse response: %w", err)
	}

	pages := make([]domain.PageImage, 0, len(parsed.Pages))
	for _, p := range parsed.Pages {
		img, err := base64.StdEncoding.DecodeString(p.PNG)
		if err != nil {
			return nil, fmt.Errorf("rasterizer: decode page %d: %w", p.Page, err)
		}
		pages = append(pages, domain.PageImage{
			PageNumber: p.Page,
			ImageBytes: img,
			Width:      p.Width,
			Height:     p.Height,
		})
	}
	return pages, nil
}

// multipartFile builds a one-file multipart body with optional extra fields.
func multipartFile(data []byte, filename string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write file data: %w", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
