package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"zyncchat-api/metrics"
	"zyncchat-api/utils"
)

const maxVendorBody = 32 << 20

// VendorClient performs single, unretried calls to one external API and
// translates failures into upstream errors.
type VendorClient struct {
	name    string
	client  *http.Client
	timeout time.Duration
}

func NewVendorClient(name string, client *http.Client, timeout time.Duration) *VendorClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &VendorClient{name: name, client: client, timeout: timeout}
}

func (v *VendorClient) Name() string {
	return v.name
}

// Do sends req bound to ctx and the vendor timeout. Only 2xx bodies are returned.
func (v *VendorClient) Do(ctx context.Context, req *http.Request) ([]byte, http.Header, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := v.client.Do(req.WithContext(ctx))
	if err != nil {
		metrics.RecordVendorCall(v.name, "error", time.Since(start))
		return nil, nil, utils.Upstream(fmt.Sprintf("%s request failed", v.name), nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVendorBody))
	if err != nil {
		metrics.RecordVendorCall(v.name, "error", time.Since(start))
		return nil, nil, utils.Upstream(fmt.Sprintf("%s response could not be read", v.name), nil, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordVendorCall(v.name, "http_"+strconv.Itoa(resp.StatusCode), time.Since(start))
		return nil, nil, utils.Upstream(
			fmt.Sprintf("%s returned status %d", v.name, resp.StatusCode),
			vendorDetail(resp.StatusCode, body),
			nil,
		)
	}

	metrics.RecordVendorCall(v.name, "ok", time.Since(start))
	return body, resp.Header, nil
}

// PostJSON posts payload as JSON and parses the JSON reply.
func (v *VendorClient) PostJSON(ctx context.Context, url string, headers map[string]string, payload any) (gjson.Result, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("encode %s payload: %w", v.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build %s request: %w", v.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	return v.DoJSON(ctx, req)
}

// DoJSON is Do for endpoints that answer JSON.
func (v *VendorClient) DoJSON(ctx context.Context, req *http.Request) (gjson.Result, error) {
	body, _, err := v.Do(ctx, req)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, utils.Upstream(
			fmt.Sprintf("%s returned an invalid response", v.name),
			vendorDetail(http.StatusOK, body),
			nil,
		)
	}
	return gjson.ParseBytes(body), nil
}

func vendorDetail(status int, body []byte) map[string]any {
	detail := map[string]any{"status": status}
	if len(body) == 0 {
		return detail
	}
	if gjson.ValidBytes(body) {
		detail["body"] = json.RawMessage(body)
		return detail
	}
	const maxText = 2048
	if len(body) > maxText {
		body = body[:maxText]
	}
	detail["body"] = string(body)
	return detail
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
