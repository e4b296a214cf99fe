package healthexport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// Client pushes finished-session summaries to an external health
// aggregator over HTTP. The push is best effort: the session is already
// committed locally before export is attempted, and a failed export is
// logged and dropped.
type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(url string, log *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Export sends a session summary asynchronously. It returns immediately;
// delivery happens on a background goroutine with retries.
func (c *Client) Export(summary models.SessionSummary) {
	go func() {
		if err := c.send(summary); err != nil {
			c.log.Warn("health export failed",
				"session_id", summary.SessionID, "error", err)
		}
	}()
}

// send POSTs the summary, retrying up to 3 times with exponential backoff.
func (c *Client) send(summary models.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		resp, err := c.httpClient.Post(c.url, "application/json", bytes.NewReader(data))
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("export failed (status %d): %s", resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
