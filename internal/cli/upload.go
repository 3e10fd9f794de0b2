package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"

	"github.com/ralt/yumupload/internal/models"
	"github.com/ralt/yumupload/internal/scanner"
	"github.com/ralt/yumupload/internal/upload"
)

// ErrUploadFailed is returned when at least one upload reported failure
var ErrUploadFailed = errors.New("upload failed")

type uploadFlags struct {
	typeID          string
	repoID          string
	file            string
	dir             string
	unitKeyPath     string
	metadataPath    string
	skipErratumLink bool
	workers         int
}

// fileReport is printed for every file of a directory upload
type fileReport struct {
	File   string        `json:"file"`
	Report models.Report `json:"report"`
}

func newUploadCmd(a *app) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Import an uploaded unit",
		Long: `Imports a single unit, or every package found in a directory, and
prints a JSON report for each. Package files are moved into storage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateUploadFlags(&flags); err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				flags.workers = a.cfg.Upload.Workers
			}
			return a.runUpload(cmd.Context(), cmd.OutOrStdout(), &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.typeID, "type", "t", "", "Type of the uploaded unit")
	cmd.Flags().StringVarP(&flags.repoID, "repo-id", "r", "", "Repository the upload belongs to")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Staged file to import")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "Directory of packages to import")
	cmd.Flags().StringVar(&flags.unitKeyPath, "unit-key", "", "JSON file with unit key fields")
	cmd.Flags().StringVar(&flags.metadataPath, "metadata", "", "JSON file with unit metadata")
	cmd.Flags().BoolVar(&flags.skipErratumLink, "skip-erratum-link", false, "Do not link errata to their packages")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 4, "Concurrent uploads for --dir")

	return cmd
}

func validateUploadFlags(flags *uploadFlags) error {
	if flags.repoID == "" {
		return fmt.Errorf("--repo-id is required")
	}
	if flags.file != "" && flags.dir != "" {
		return fmt.Errorf("--file and --dir are mutually exclusive")
	}
	if flags.dir == "" && flags.typeID == "" {
		return fmt.Errorf("--type is required")
	}
	if flags.workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}
	return nil
}

func (a *app) runUpload(ctx context.Context, out io.Writer, flags *uploadFlags) error {
	key, err := readFields(flags.unitKeyPath)
	if err != nil {
		return err
	}
	metadata, err := readFields(flags.metadataPath)
	if err != nil {
		return err
	}
	opts, err := models.ParseUploadOptions(map[string]any{
		models.SkipErratumLinkOption: flags.skipErratumLink || a.cfg.Upload.SkipErratumLink,
	})
	if err != nil {
		return err
	}

	cat, err := a.openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	uploader := upload.New(cat, a.log)
	base := upload.Request{
		TypeID:     flags.typeID,
		UnitKey:    key,
		Metadata:   metadata,
		Repository: models.Repository{ID: flags.repoID},
		Options:    opts,
	}

	enc := json.NewEncoder(out)
	if flags.dir == "" {
		base.FilePath = flags.file
		report := uploader.Upload(ctx, base)
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Success {
			return ErrUploadFailed
		}
		return nil
	}

	reports, err := a.uploadDir(ctx, uploader, base, flags)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return err
		}
		if !r.Report.Success {
			failed++
		}
	}
	a.log.Infof("Imported %d of %d packages", len(reports)-failed, len(reports))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d packages", ErrUploadFailed, failed, len(reports))
	}
	return nil
}

// uploadDir imports every package under flags.dir through a worker pool.
// When a type is given, packages of other types are skipped.
func (a *app) uploadDir(ctx context.Context, uploader *upload.Uploader, base upload.Request, flags *uploadFlags) ([]fileReport, error) {
	a.log.Infof("Scanning directory: %s", flags.dir)
	scanned, err := scanner.NewFileSystemScanner(a.log).Scan(ctx, flags.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	var packages []scanner.ScannedPackage
	for _, p := range scanned {
		if flags.typeID != "" && p.Type.String() != flags.typeID {
			a.log.Debugf("Skipping %s package: %s", p.Type, p.Path)
			continue
		}
		packages = append(packages, p)
	}
	if len(packages) == 0 {
		a.log.Warn("No packages found in input directory")
		return nil, nil
	}
	a.log.Infof("Found %d packages", len(packages))

	pool, err := ants.NewPool(flags.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	reports := make([]fileReport, len(packages))
	var wg sync.WaitGroup
	for i, p := range packages {
		req := base
		req.TypeID = p.Type.String()
		req.FilePath = p.Path
		reports[i].File = p.Path

		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			reports[i].Report = uploader.Upload(ctx, req)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to schedule %s: %w", p.Path, err)
		}
	}
	wg.Wait()

	return reports, nil
}
