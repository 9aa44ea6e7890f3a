package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// ListVHS returns a page of the catalog.
func (c *Client) ListVHS(ctx context.Context, q PageQuery) (*domain.Page[domain.VHS], error) {
	var page domain.Page[domain.VHS]
	if err := c.get(ctx, "/vhs", q.values(), &page); err != nil {
		return nil, fmt.Errorf("client.ListVHS: %w", err)
	}
	return &page, nil
}

// GetVHS fetches a single tape by ID.
func (c *Client) GetVHS(ctx context.Context, id string) (*domain.VHS, error) {
	var v domain.VHS
	if err := c.get(ctx, "/vhs/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, fmt.Errorf("client.GetVHS: %w", err)
	}
	return &v, nil
}

// CreateVHS adds a tape to the catalog. The API takes a multipart form with
// an optional cover image.
func (c *Client) CreateVHS(ctx context.Context, req domain.CreateVHSRequest) (*domain.VHS, error) {
	body, contentType, err := encodeVHSForm(req)
	if err != nil {
		return nil, fmt.Errorf("client.CreateVHS: %w", Normalize(err))
	}
	var v domain.VHS
	if err := c.Send(ctx, Request{Method: http.MethodPost, Path: "/vhs", RawBody: body, ContentType: contentType}, &v); err != nil {
		return nil, fmt.Errorf("client.CreateVHS: %w", err)
	}
	return &v, nil
}

func encodeVHSForm(req domain.CreateVHSRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", req.Title},
		{"releaseDate", req.ReleaseDate},
		{"genreId", req.GenreID},
		{"rentalPrice", strconv.FormatFloat(req.RentalPrice, 'f', -1, 64)},
		{"stockLevel", strconv.Itoa(req.StockLevel)},
		{"status", string(req.Status)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if len(req.Image) > 0 {
		name := req.ImageName
		if name == "" {
			name = "cover"
		}
		part, err := w.CreateFormFile("image", name)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(req.Image); err != nil {
			return nil, "", fmt.Errorf("write image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
