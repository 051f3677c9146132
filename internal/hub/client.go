package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

const (
	// DefaultBaseURL is the public HuggingFace endpoint.
	DefaultBaseURL = "https://huggingface.co"

	// GazeRepo is the dataset repository holding the gaze data.
	GazeRepo = "Lennyox/hazardous_driving_eye_gaze"

	// GazeDataFile is the dataset file the acquisition pipeline needs.
	GazeDataFile = "gaze_data.csv"

	// streamChunkSize is the read size for the raw streamed fallback.
	streamChunkSize = 8 * 1024
)

// Client talks to a HuggingFace-compatible dataset hub.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	log *slog.Logger
}

// NewClient creates a hub client for the given access token.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		log: logger,
	}
}

func (c *Client) get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// Whoami verifies the token against the hub and returns the account name.
func (c *Client) Whoami() (string, error) {
	resp, err := c.get(c.BaseURL + "/api/whoami-v2")
	if err != nil {
		return "", fmt.Errorf("failed to reach hub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hub rejected token (status %d)", resp.StatusCode)
	}

	var whoami struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&whoami); err != nil {
		return "", fmt.Errorf("failed to decode whoami response: %w", err)
	}

	return whoami.Name, nil
}

func (c *Client) resolveURL(repo, filename string) string {
	return fmt.Sprintf("%s/datasets/%s/resolve/main/%s", c.BaseURL, repo, filename)
}

// strategy is one way of getting a dataset file onto disk. Strategies are
// tried in fixed order; the first that returns nil wins.
type strategy struct {
	name string
	run  func(repo, filename, dest string) error
}

// DownloadFile fetches one dataset file, falling back through the download
// strategies until one succeeds. If every strategy fails the returned error
// joins all of their causes.
func (c *Client) DownloadFile(repo, filename, dest string) error {
	strategies := []strategy{
		{"api-listing", c.apiListingDownload},
		{"hub-download", c.hubDownload},
		{"stream-download", c.streamDownload},
	}

	var errs []error
	for _, s := range strategies {
		c.log.Debug("Trying download method", "method", s.name, "repo", repo, "file", filename)

		if err := s.run(repo, filename, dest); err != nil {
			c.log.Debug("Download method failed", "method", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}

		c.log.Info("Download succeeded", "method", s.name, "file", filename)
		return nil
	}

	return fmt.Errorf("all download methods failed: %w", errors.Join(errs...))
}

// apiListingDownload asks the hub's dataset API for the repository listing,
// confirms the wanted file is among its siblings, then streams it. Listing
// alone is only a reachability check; the file still has to land on disk for
// the strategy to count as a success.
func (c *Client) apiListingDownload(repo, filename, dest string) error {
	resp, err := c.get(c.BaseURL + "/api/datasets/" + repo)
	if err != nil {
		return fmt.Errorf("failed to list dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dataset listing returned status %d", resp.StatusCode)
	}

	var listing struct {
		Siblings []struct {
			Rfilename string `json:"rfilename"`
		} `json:"siblings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return fmt.Errorf("failed to decode dataset listing: %w", err)
	}

	found := false
	for _, sibling := range listing.Siblings {
		if sibling.Rfilename == filename {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("file %s not listed in dataset %s", filename, repo)
	}

	return c.fetchToFile(c.resolveURL(repo, filename), dest)
}

// hubDownload is the managed download path: stream to a .tmp file next to the
// destination and rename into place once complete.
func (c *Client) hubDownload(repo, filename, dest string) error {
	tempPath := dest + ".tmp"

	if err := c.fetchToFile(c.resolveURL(repo, filename), tempPath); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, dest); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

// streamDownload is the last-resort raw authenticated GET, written straight
// to the destination in fixed-size chunks with a progress bar driven by the
// response's declared total size. A failed attempt leaves no resumable state:
// the file is truncated on the next try.
func (c *Client) streamDownload(repo, filename, dest string) error {
	resp, err := c.get(c.resolveURL(repo, filename))
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	bar := newDownloadBar(resp.ContentLength, filename)

	buf := make([]byte, streamChunkSize)
	var downloaded int64

	for {
		nr, er := resp.Body.Read(buf)
		if nr > 0 {
			nw, ew := out.Write(buf[:nr])
			downloaded += int64(nw)
			_ = bar.Add(nw)

			if ew != nil {
				return fmt.Errorf("download failed: %w", ew)
			}
			if nr != nw {
				return fmt.Errorf("download failed: %w", io.ErrShortWrite)
			}
		}
		if er != nil {
			if er != io.EOF {
				return fmt.Errorf("download failed: %w", er)
			}
			break
		}
	}

	if resp.ContentLength > 0 && downloaded != resp.ContentLength {
		return fmt.Errorf("short download: got %d of %d bytes", downloaded, resp.ContentLength)
	}

	return nil
}

// fetchToFile streams an authenticated GET to a local path with chunked
// writes.
func (c *Client) fetchToFile(url, dest string) error {
	resp, err := c.get(url)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.CopyBuffer(out, resp.Body, make([]byte, streamChunkSize)); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	return nil
}

// newDownloadBar builds the byte-unit progress bar used by streamed
// downloads.
func newDownloadBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
