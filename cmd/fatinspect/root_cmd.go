package main

import (
	"encoding/json"
	"fmt"

	"github.com/aligator/fatinspect"
	"github.com/aligator/fatinspect/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// defaultImage is inspected if no image is given.
const defaultImage = "fat32-test.img"

// cmd needs only this method.
type inspector interface {
	Inspect(path string) (*fatinspect.Report, error)
}

// Allow tests to inject a fake inspector.
var newInspector = func(cfg fatinspect.Config) inspector {
	return fatinspect.NewInspector(afero.NewOsFs(), cfg)
}

// configFs is where --config is read from.
var configFs = afero.NewOsFs()

// Command flags, shared by all commands.
var (
	outputFormat = "text"
	prettyJSON   = false
	configFile   = ""
	verbose      = false

	maxChainLinks    = fatinspect.DefaultMaxChainLinks
	detectCycles     = false
	strictBootSector = false
	shortNameCharset = fatinspect.CharsetASCII
	scanLength       = 0
	partitionIndex   = 0
)

// createRootCommand creates the fatinspect command with all subcommands.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fatinspect [flags] [IMAGE_FILE]",
		Short: "analyzes the root directory of a FAT32 image",
		Long: `fatinspect reads the boot sector of a FAT32 image, follows the
cluster chain of the root directory and reports every used and free
directory slot, the reassembled long file names and whether another
entry still fits. IMAGE_FILE defaults to ` + defaultImage + `.`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: prepare,
		RunE:              executeInspect,
		SilenceUsage:      true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&outputFormat, "format", "text",
		"Specify the output format: text, json or yaml")
	flags.BoolVar(&prettyJSON, "pretty", false,
		"Pretty-print JSON output (only for --format json)")
	flags.StringVarP(&configFile, "config", "c", "",
		"Read settings from this YAML file, flags take precedence")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Log debug output to stderr")
	addConfigFlags(flags)

	rootCmd.AddCommand(createLsCommand())
	return rootCmd
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.IntVar(&maxChainLinks, "max-chain", fatinspect.DefaultMaxChainLinks,
		"Stop following a cluster chain after this many clusters")
	flags.BoolVar(&detectCycles, "detect-cycles", false,
		"Stop following a cluster chain at the first repeated cluster")
	flags.BoolVar(&strictBootSector, "strict", false,
		"Reject boot sectors with invalid signature, jump or sizes")
	flags.StringVar(&shortNameCharset, "charset", fatinspect.CharsetASCII,
		"Character set of short names: ascii or cp437")
	flags.IntVar(&scanLength, "scan-length", 0,
		"Number of bytes analyzed per directory cluster, 0 for the whole cluster")
	flags.IntVarP(&partitionIndex, "partition", "p", 0,
		"Inspect this partition (starting at 1) of a partitioned disk image")
}

func prepare(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported --format %q (supported: text, json, yaml)", outputFormat)
	}

	if verbose {
		return logger.SetLevel("debug")
	}
	return nil
}

// loadConfig combines the config file with all explicitly set flags.
func loadConfig(cmd *cobra.Command) (fatinspect.Config, error) {
	cfg := fatinspect.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = fatinspect.LoadConfig(configFs, configFile)
		if err != nil {
			return fatinspect.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("max-chain") {
		cfg.MaxChainLinks = maxChainLinks
	}
	if flags.Changed("detect-cycles") {
		cfg.DetectCycles = detectCycles
	}
	if flags.Changed("strict") {
		cfg.Strict = strictBootSector
	}
	if flags.Changed("charset") {
		cfg.ShortNameCharset = shortNameCharset
	}
	if flags.Changed("scan-length") {
		cfg.ScanLength = scanLength
	}
	if flags.Changed("partition") {
		cfg.Partition = partitionIndex
	}

	return cfg, cfg.Validate()
}

func imagePath(args []string) string {
	if len(args) == 0 {
		return defaultImage
	}
	return args[0]
}

// inspect runs an inspection pass as configured by the flags.
func inspect(cmd *cobra.Command, args []string) (*fatinspect.Report, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	path := imagePath(args)
	report, err := newInspector(cfg).Inspect(path)
	if err != nil {
		return nil, fmt.Errorf("inspection of %s failed: %w", path, err)
	}
	return report, nil
}

// executeInspect handles the root command execution logic
func executeInspect(cmd *cobra.Command, args []string) error {
	report, err := inspect(cmd, args)
	if err != nil {
		return err
	}

	return writeResult(cmd, report, func() {
		fatinspect.PrintReport(cmd.OutOrStdout(), report)
	})
}

// writeResult writes v in the selected format. printText is used for text.
func writeResult(cmd *cobra.Command, v interface{}, printText func()) error {
	out := cmd.OutOrStdout()

	switch outputFormat {
	case "text":
		printText()
		return nil

	case "json":
		var (
			b   []byte
			err error
		)
		if prettyJSON {
			b, err = json.MarshalIndent(v, "", "  ")
		} else {
			b, err = json.Marshal(v)
		}
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil

	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, _ = fmt.Fprint(out, string(b))
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
