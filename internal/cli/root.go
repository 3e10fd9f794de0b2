package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/yumupload/internal/catalog"
	"github.com/ralt/yumupload/internal/config"
)

// app carries the configuration shared by the subcommands
type app struct {
	configPath  string
	verbose     bool
	storageRoot string
	catalogPath string

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCmd creates the root command. A nil logger means the standard
// logrus logger.
func NewRootCmd(logger *logrus.Logger) *cobra.Command {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	a := &app{log: logger}

	rootCmd := &cobra.Command{
		Use:   "yumupload",
		Short: "Import uploaded yum content into a content catalog",
		Long: `Yumupload imports uploaded files and metadata into a yum content
catalog, moving files into storage and recording each unit.

Supported types:
  - rpm, srpm (package files)
  - package_group, package_category
  - erratum
  - yum_repo_metadata_file`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default $"+config.EnvVar+")")
	rootCmd.PersistentFlags().StringVar(&a.storageRoot, "storage-root", "", "Directory unit files are stored under")
	rootCmd.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "Catalog database directory")

	// Add subcommands
	rootCmd.AddCommand(newUploadCmd(a))
	rootCmd.AddCommand(newUnitsCmd(a))
	rootCmd.AddCommand(newLinksCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	// Flags override the file
	if cmd.Flags().Changed("storage-root") {
		cfg.Storage.Root = a.storageRoot
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog.Path = a.catalogPath
		cfg.Catalog.InMemory = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.ConfigureLogger(a.log); err != nil {
		return err
	}
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	a.cfg = cfg
	return nil
}

func (a *app) openCatalog() (*catalog.Backend, error) {
	return catalog.OpenBackend(catalog.Options{
		Path:        a.cfg.Catalog.Path,
		InMemory:    a.cfg.Catalog.InMemory,
		StorageRoot: a.cfg.Storage.Root,
		Logger:      a.log,
	})
}
