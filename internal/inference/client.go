// Package inference posts plant photos to the remote disease-classifier
// endpoint.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Prediction is the classifier's answer for one image.
type Prediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// Client uploads images to the inference endpoint.
type Client struct {
	url string
	hc  *http.Client
}

// New builds a client for the predict endpoint URL.
func New(predictURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: predictURL, hc: hc}
}

// Predict uploads the image as multipart form field "image" and returns
// the classifier's label and confidence.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (Prediction, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return Prediction{}, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return Prediction{}, fmt.Errorf("inference: read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("inference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Prediction{}, fmt.Errorf("inference: unexpected status %s", resp.Status)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return Prediction{}, fmt.Errorf("inference: decode: %w", err)
	}
	return pred, nil
}
