// Package api is a client for the NanoPi measurement REST API. It handles
// basic-auth, pagination, and decoding of the per-kind measurement records.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Device is one NanoPi as returned by the directory endpoint.
type Device struct {
	ID           int64  `json:"id"`
	LocationInfo string `json:"location_info"`
}

// BandwidthRecord is one iperf3 result. Bandwidth is in Mbit/s.
type BandwidthRecord struct {
	ID         int64     `json:"id"`
	Bandwidth  float64   `json:"bandwidth"`
	Nanopi     int64     `json:"nanopi"`
	Direction  string    `json:"direction"`
	UploadDate time.Time `json:"upload_date"`
}

type JitterRecord struct {
	ID         int64     `json:"id"`
	Jitter     float64   `json:"jitter"`
	Nanopi     int64     `json:"nanopi"`
	UploadDate time.Time `json:"upload_date"`
}

// LatencyRecord carries the raw sockperf value, 1000x the reported unit.
// The table builder applies the conversion.
type LatencyRecord struct {
	ID         int64     `json:"id"`
	Latency    float64   `json:"latency"`
	Nanopi     int64     `json:"nanopi"`
	UploadDate time.Time `json:"upload_date"`
}

// PingRecord is one ping state observation. Time is when the state was
// observed; UploadDate is when the record reached the server.
type PingRecord struct {
	ID         int64     `json:"id"`
	State      string    `json:"state"`
	Nanopi     int64     `json:"nanopi"`
	UploadDate time.Time `json:"upload_date"`
	Time       time.Time `json:"time"`
}

// BasicAuth carries the credentials sent with every request.
type BasicAuth struct {
	Username string
	Password string
}

// Labels maps a nanopi id to its human-readable location.
type Labels map[int64]string

// Get returns the location label, or a "nanopi <id>" sentinel when the id is
// unknown, so a stale directory never yields blank axis labels.
func (l Labels) Get(id int64) string {
	if name, ok := l[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("nanopi %d", id)
}

// LabelsFromDevices builds the id->location mapping from the directory.
func LabelsFromDevices(devices []Device) Labels {
	labels := make(Labels, len(devices))
	for _, d := range devices {
		labels[d.ID] = d.LocationInfo
	}
	return labels
}

// Client talks to the measurement API. Construct with NewClient.
type Client struct {
	cfg  Config
	auth BasicAuth
	http *http.Client
}

func NewClient(cfg Config, auth BasicAuth) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{cfg: cfg, auth: auth, http: &http.Client{Timeout: timeout}}
}

// page mirrors the server's pagination envelope. Next is empty on the last
// page (the server sends null).
type page struct {
	Results []json.RawMessage `json:"results"`
	Next    string            `json:"next"`
}

func (c *Client) get(ctx context.Context, rawurl string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawurl, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.auth.Username, c.auth.Password)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s (%s)", rawurl, resp.Status, string(body))
	}
	return resp, nil
}

// fetchAll pages through a list endpoint and returns every result in arrival
// order. Query params are attached to the first request only; the server's
// next URL carries them forward. No retries: the first failure aborts.
func (c *Client) fetchAll(ctx context.Context, rawurl string, params url.Values) ([]json.RawMessage, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawurl, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var results []json.RawMessage
	next := u.String()
	pages := 0
	for next != "" {
		resp, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var pg page
		err = json.NewDecoder(resp.Body).Decode(&pg)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode page %s: %w", next, err)
		}
		results = append(results, pg.Results...)
		next = pg.Next
		pages++
	}
	Debugf("fetched %d records over %d pages from %s", len(results), pages, rawurl)
	return results, nil
}

// Nanopis fetches the device directory. The endpoint is a plain array, not
// paginated.
func (c *Client) Nanopis(ctx context.Context) ([]Device, error) {
	Infof("fetching nanopi directory")
	resp, err := c.get(ctx, c.cfg.NanopiURL())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var devices []Device
	if err := json.NewDecoder(resp.Body).Decode(&devices); err != nil {
		return nil, fmt.Errorf("decode nanopi directory: %w", err)
	}
	return devices, nil
}

func (c *Client) BandwidthRecords(ctx context.Context, params url.Values) ([]BandwidthRecord, error) {
	Infof("fetching bandwidth records")
	raw, err := c.fetchAll(ctx, c.cfg.IperfURL(), params)
	if err != nil {
		return nil, err
	}
	records := make([]BandwidthRecord, 0, len(raw))
	for _, r := range raw {
		var rec BandwidthRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("decode bandwidth record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) JitterRecords(ctx context.Context, params url.Values) ([]JitterRecord, error) {
	Infof("fetching jitter records")
	raw, err := c.fetchAll(ctx, c.cfg.JitterURL(), params)
	if err != nil {
		return nil, err
	}
	records := make([]JitterRecord, 0, len(raw))
	for _, r := range raw {
		var rec JitterRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("decode jitter record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) LatencyRecords(ctx context.Context, params url.Values) ([]LatencyRecord, error) {
	Infof("fetching latency records")
	raw, err := c.fetchAll(ctx, c.cfg.LatencyURL(), params)
	if err != nil {
		return nil, err
	}
	records := make([]LatencyRecord, 0, len(raw))
	for _, r := range raw {
		var rec LatencyRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("decode latency record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// PingRecords fetches ping observations. When params is nil the server-side
// filter defaults to state=down, which is what the reports care about.
func (c *Client) PingRecords(ctx context.Context, params url.Values) ([]PingRecord, error) {
	Infof("fetching ping records")
	if params == nil {
		params = url.Values{"state": []string{"down"}}
	}
	raw, err := c.fetchAll(ctx, c.cfg.PingURL(), params)
	if err != nil {
		return nil, err
	}
	records := make([]PingRecord, 0, len(raw))
	for _, r := range raw {
		var rec PingRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("decode ping record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
