package poller

import (
	"context"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/Dicklesworthstone/proctree/internal/wire"
)

// Client fetches snapshots from a remote "proctree serve".
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

// GetSnapshot issues one get_processes request.
func (c *Client) GetSnapshot(ctx context.Context) (wire.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/get_processes", nil)
	if err != nil {
		return wire.Document{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return wire.Document{}, errors.Wrap(err, "get_processes")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wire.Document{}, remoteError(resp)
	}
	return wire.Decode(resp.Body)
}

func remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return errors.Errorf("get_processes: %s: %s", resp.Status, payload.Error)
	}
	return errors.Errorf("get_processes: %s", resp.Status)
}
