// Package acquire orchestrates the dataset acquisition pipeline: gaze data
// from the hub, the Cityscapes archive, and the normalized local tree.
package acquire

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lennox55555/HAHD/internal/cityscapes"
	"github.com/lennox55555/HAHD/internal/convert"
	"github.com/lennox55555/HAHD/internal/hub"
	"github.com/lennox55555/HAHD/internal/mapping"
)

// troubleshootingChecklist is printed when every gaze download method has
// failed.
const troubleshootingChecklist = `
Troubleshooting checklist:
  1. Check your internet connection
  2. Verify your token at https://huggingface.co/settings/tokens has read access
  3. Make sure you accepted the dataset terms at
     https://huggingface.co/datasets/` + hub.GazeRepo + `
  4. The hub may be temporarily unavailable; retry in a few minutes`

// Setup runs the acquisition pipeline.
type Setup struct {
	Layout         Layout
	Credentials    Credentials
	SkipCityscapes bool

	// Hub and Cityscapes may be preset for testing; Run builds real
	// clients when they are nil.
	Hub        *hub.Client
	Cityscapes *cityscapes.Client

	log *slog.Logger
}

// NewSetup creates the acquisition orchestrator for the given working
// directory.
func NewSetup(workDir string, creds Credentials, logger *slog.Logger) *Setup {
	return &Setup{
		Layout:      NewLayout(workDir),
		Credentials: creds,
		log:         logger,
	}
}

// Run executes the full acquisition: mapping load, gaze download, archive
// fetch-and-prune, image normalization, verification, and the summary
// report. Any returned error is fatal for the run.
func (s *Setup) Run() error {
	table, err := s.loadMapping()
	if err != nil {
		return err
	}

	s.log.Info("Setting up directories", "base", s.Layout.Base)
	if err := s.Layout.Ensure(); err != nil {
		return err
	}

	report := NewReport(s.Layout.Base)
	report.MappingEntries = len(table.Entries)

	if err := s.downloadGazeData(); err != nil {
		return err
	}
	report.GazeDataPath = s.Layout.GazeDataPath()

	if err := table.Copy(s.Layout.MappingCopyPath()); err != nil {
		return fmt.Errorf("failed to copy mapping file: %w", err)
	}

	if s.SkipCityscapes {
		s.log.Info("Skipping Cityscapes download")
	} else {
		if err := s.fetchCityscapes(table, report); err != nil {
			return err
		}
		report.CityscapesRun = true
	}

	// The temp staging directory only lives for the duration of one run,
	// whether or not the archive pipeline used it.
	if err := os.RemoveAll(s.Layout.Temp); err != nil {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}

	if err := s.Verify(); err != nil {
		return err
	}

	if err := report.Save(s.Layout.ReportPath()); err != nil {
		return err
	}

	s.printSummary(report)
	return nil
}

func (s *Setup) loadMapping() (*mapping.Table, error) {
	path, err := mapping.Find(filepath.Dir(s.Layout.Base))
	if err != nil {
		return nil, err
	}

	table, err := mapping.Load(path)
	if err != nil {
		return nil, err
	}

	s.log.Info("Loaded mapping table", "path", path, "entries", len(table.Entries))
	return table, nil
}

// downloadGazeData authenticates against the hub and fetches the gaze CSV
// through the fallback strategy chain.
func (s *Setup) downloadGazeData() error {
	if err := s.Credentials.EnsureHFToken(); err != nil {
		return err
	}

	client := s.Hub
	if client == nil {
		client = hub.NewClient(s.Credentials.HFToken, s.log)
	}
	client.Token = s.Credentials.HFToken

	account, err := client.Whoami()
	if err != nil {
		return fmt.Errorf("Hugging Face login failed: %w", err)
	}
	s.log.Info("Logged in to Hugging Face", "account", account)

	s.log.Info("Downloading gaze dataset", "repo", hub.GazeRepo, "file", hub.GazeDataFile)
	if err := client.DownloadFile(hub.GazeRepo, hub.GazeDataFile, s.Layout.GazeDataPath()); err != nil {
		fmt.Println(troubleshootingChecklist)
		return fmt.Errorf("failed to download gaze dataset: %w", err)
	}

	return nil
}

// fetchCityscapes logs in, downloads the archive to the temp directory,
// extracts only the mapped entries, and converts them in place.
func (s *Setup) fetchCityscapes(table *mapping.Table, report *Report) error {
	if err := s.Credentials.EnsureCityscapes(); err != nil {
		return err
	}

	client := s.Cityscapes
	if client == nil {
		var err error
		client, err = cityscapes.NewClient(s.log)
		if err != nil {
			return err
		}
	}

	if err := client.Login(s.Credentials.CityscapesUser, s.Credentials.CityscapesPassword); err != nil {
		return err
	}

	archive := s.Layout.ArchivePath()
	if err := client.DownloadPackage(cityscapes.LeftImg8bitPackageID, archive); err != nil {
		return err
	}

	s.log.Info("Extracting mapped images from archive")
	extracted, err := cityscapes.ExtractMatching(archive, table.Names(), s.Layout.Cityscapes, s.log)
	if err != nil {
		return err
	}
	report.EntriesExtracted = extracted

	if err := cityscapes.PruneEmptyDirs(s.Layout.Cityscapes); err != nil {
		return err
	}

	converted, err := convert.NormalizeImages(s.Layout.Cityscapes, s.Layout.Cityscapes, table.Lookup(), s.log)
	if err != nil {
		return err
	}
	report.ImagesConverted = converted

	// Selective extraction can leave empty directories behind again after
	// the converted sources are deleted.
	if err := cityscapes.PruneEmptyDirs(s.Layout.Cityscapes); err != nil {
		return err
	}

	return nil
}

// Verify is the post-condition check: the gaze CSV must exist at its fixed
// path and, unless the image pipeline was skipped, at least one converted
// image must exist under the cityscapes tree.
func (s *Setup) Verify() error {
	if _, err := os.Stat(s.Layout.GazeDataPath()); err != nil {
		return fmt.Errorf("verification failed: gaze data missing at %s", s.Layout.GazeDataPath())
	}

	if s.SkipCityscapes {
		return nil
	}

	found := false
	err := filepath.WalkDir(s.Layout.Cityscapes, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".jpg") {
			found = true
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if !found {
		return fmt.Errorf("verification failed: no converted images under %s", s.Layout.Cityscapes)
	}

	return nil
}

func (s *Setup) printSummary(report *Report) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SETUP COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Data location: %s\n", report.BaseDir)
	fmt.Printf("Gaze data: %s\n", report.GazeDataPath)
	fmt.Printf("Mapping entries: %d\n", report.MappingEntries)
	if report.CityscapesRun {
		fmt.Printf("Archive entries extracted: %d\n", report.EntriesExtracted)
		fmt.Printf("Images converted: %d\n", report.ImagesConverted)
	} else {
		fmt.Println("Cityscapes download skipped")
	}
	fmt.Printf("Report: %s\n", s.Layout.ReportPath())
}
