package network

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// NetworkManager performs outbound HTTP calls for the proxy endpoints.
// There is deliberately no retry or backoff: an upstream failure is
// surfaced once as a generic error.
type NetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	return &NetworkManager{
		Config: cfg,
		Logger: log,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with query parameters.
func (nm *NetworkManager) Get(urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	req, err := http.NewRequest("GET", reqUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	if nm.Config.Network.UserAgent != "" {
		req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Info("Request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		nm.Logger.Info("Bad status %d for %s", resp.StatusCode, reqUrl.Host)
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
