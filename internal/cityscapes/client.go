// Package cityscapes downloads the Cityscapes image archive and extracts
// only the entries the mapping table references.
package cityscapes

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

const (
	// DefaultBaseURL is the Cityscapes dataset site.
	DefaultBaseURL = "https://www.cityscapes-dataset.com"

	// LeftImg8bitPackageID identifies the leftImg8bit_trainvaltest archive.
	LeftImg8bitPackageID = 3

	// downloadChunkSize is the read size for the streamed archive download.
	downloadChunkSize = 8 * 1024
)

// Client holds an authenticated session with the Cityscapes site. The
// session lives in the cookie jar for the duration of one download and is
// discarded with the client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	log *slog.Logger
}

// NewClient creates a Cityscapes client with a fresh cookie jar.
func NewClient(logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 60 * time.Minute,
		},
		log: logger,
	}, nil
}

// Login posts the credential form and establishes a session. The site
// redirects failed logins back to the login page, so a landing URL that
// still denotes the login page means the credentials were rejected.
func (c *Client) Login(username, password string) error {
	form := url.Values{
		"username": {username},
		"password": {password},
		"submit":   {"Login"},
	}

	resp, err := c.HTTPClient.PostForm(c.BaseURL+"/login/", form)
	if err != nil {
		return fmt.Errorf("failed to reach login page: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if strings.Contains(strings.ToLower(resp.Request.URL.String()), "login") {
		return fmt.Errorf("cityscapes login failed: check username and password")
	}

	c.log.Info("Logged in to Cityscapes")
	return nil
}

// DownloadPackage streams one archive package to dest with chunked writes
// and a byte-count progress bar.
func (c *Client) DownloadPackage(packageID int, dest string) error {
	c.log.Info("Downloading Cityscapes package", "package_id", packageID, "dest", dest)

	resp, err := c.HTTPClient.Get(fmt.Sprintf("%s/file-handling/?packageID=%d", c.BaseURL, packageID))
	if err != nil {
		return fmt.Errorf("failed to download package: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("package download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan]cityscapes.zip[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	buf := make([]byte, downloadChunkSize)
	for {
		nr, er := resp.Body.Read(buf)
		if nr > 0 {
			nw, ew := out.Write(buf[:nr])
			_ = bar.Add(nw)

			if ew != nil {
				return fmt.Errorf("archive download failed: %w", ew)
			}
			if nr != nw {
				return fmt.Errorf("archive download failed: %w", io.ErrShortWrite)
			}
		}
		if er != nil {
			if er != io.EOF {
				return fmt.Errorf("archive download failed: %w", er)
			}
			break
		}
	}

	return nil
}

// ExtractMatching opens the archive and extracts every entry whose name
// contains any of the given names as a substring, preserving the entry's
// relative path under destDir. It returns how many entries were extracted.
func ExtractMatching(archivePath string, names []string, destDir string, logger *slog.Logger) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	extracted := 0
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !matchesAny(entry.Name, names) {
			continue
		}

		if err := extractEntry(entry, destDir); err != nil {
			return extracted, fmt.Errorf("failed to extract %s: %w", entry.Name, err)
		}
		extracted++

		logger.Debug("Extracted archive entry", "entry", entry.Name)
	}

	logger.Info("Archive extraction complete", "extracted", extracted, "total_entries", len(reader.File))
	return extracted, nil
}

// matchesAny reports whether the entry name contains any needed name as a
// substring.
func matchesAny(entryName string, names []string) bool {
	for _, name := range names {
		if name != "" && strings.Contains(entryName, name) {
			return true
		}
	}
	return false
}

func extractEntry(entry *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(entry.Name))

	// Refuse entries that would escape the destination tree.
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("entry path escapes destination: %s", entry.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry: %w", err)
	}
	defer src.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// PruneEmptyDirs removes every directory under root left empty by selective
// extraction, deepest first. The root itself is never removed.
func PruneEmptyDirs(root string) error {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory tree: %w", err)
	}

	// Deepest directories first so emptied parents get removed too.
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read directory: %w", err)
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				return fmt.Errorf("failed to remove empty directory: %w", err)
			}
		}
	}

	return nil
}
