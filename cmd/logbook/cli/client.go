package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

// serverAddr holds the --server persistent-ish flag shared by the client
// commands (login, search, user).
var serverAddr string

// apiClient is a thin HTTP client for a running logbook server, used by
// the CLI client commands.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

// newAPIClient builds a client against --server, falling back to the
// configured host/port on loopback.
func newAPIClient(withToken bool) (*apiClient, error) {
	base := serverAddr
	if base == "" {
		port := viper.GetInt("server.port")
		if port == 0 {
			port = 8080
		}
		base = fmt.Sprintf("http://127.0.0.1:%d", port)
	}

	c := &apiClient{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}

	if withToken {
		token, err := loadToken()
		if err != nil {
			return nil, err
		}
		c.token = token
	}
	return c, nil
}

// do issues a request and decodes the JSON response into out. Non-2xx
// responses are turned into errors carrying the server's message.
func (c *apiClient) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach logbook server at %s (is it running?): %w", c.base, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s", apiErr.Error.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
