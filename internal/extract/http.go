package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleetops/fleet-ledger/internal/logging"
)

// HTTPClient calls an extraction service over HTTP. Each request is one
// JSON POST to the configured endpoint.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	logger   logging.Logger
}

// NewHTTPClient creates a client for endpoint. A nil httpClient gets a
// default client with the given timeout.
func NewHTTPClient(endpoint string, timeout time.Duration, httpClient *http.Client, logger logging.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &HTTPClient{endpoint: endpoint, client: httpClient, logger: logger}
}

type requestBody struct {
	RequestID string `json:"request_id"`
	FileName  string `json:"file_name"`
	MIMEType  string `json:"mime_type"`
	CSV       string `json:"csv,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Extract implements Extractor.
func (c *HTTPClient) Extract(ctx context.Context, req Request) (*Result, error) {
	body := requestBody{
		RequestID: req.ID,
		FileName:  req.FileName,
		MIMEType:  req.MIMEType,
		CSV:       req.CSV,
	}
	if req.IsImage() {
		body.Image = base64.StdEncoding.EncodeToString(req.Data)
	}

	raw, err := c.sendJSON(ctx, req.ID, body)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(raw)
}

func (c *HTTPClient) sendJSON(ctx context.Context, reqID string, body any) ([]byte, error) {
	logger := c.logger.WithField(logging.FieldRequestID, reqID)
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)

	logger.Debug("Sending extraction request", logging.Field{Key: "content_length", Value: len(bs)})

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close response body")
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	logger.Debug("Extraction response received",
		logging.Field{Key: logging.FieldStatus, Value: resp.StatusCode},
		logging.Field{Key: "bytes", Value: len(raw)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, nil
}
