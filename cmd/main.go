package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"collimator-gaps/controller"
	"collimator-gaps/models"
	"collimator-gaps/utils"
)

// Exit codes, one per failure kind.
const (
	exitOK          = 0
	exitOther       = 1
	exitNotFound    = 2
	exitMalformed   = 3
	exitWriteFailed = 4
)

type options struct {
	configPath  string
	opticsPath  string
	outPath     string
	format      string
	elementType string
	logFile     string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var logger *utils.Logger

	cmd := &cobra.Command{
		Use:   "collgaps",
		Short: "Derive collimator jaw gaps from MAD-X optics",
		Long: `collgaps reads a TFS optics table, finds every collimator, evaluates the
beam size at the element upstream of each one and writes jaw half-gaps and
materials to a settings file.

Run with no arguments to read ../madx/ring.tfs and write collimatorSettings.dat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := utils.INFO
			if opts.verbose {
				level = utils.DEBUG
			}
			logger = utils.InitLogger(level, opts.logFile).With("run", uuid.New().String()[:8])
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.L().Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			gc, err := controller.NewGapController(cfg, logger)
			if err != nil {
				return err
			}
			sum, err := gc.Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d collimators to %s\n", len(sum.Records), sum.OutputPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML file with sigmas, materials and paths")
	f.StringVar(&opts.opticsPath, "tfs", utils.DefaultOpticsPath, "TFS optics table to read")
	f.StringVarP(&opts.outPath, "out", "o", utils.DefaultOutputPath, "settings file to write")
	f.StringVar(&opts.format, "format", utils.DefaultFormat, "output format: dat or xlsx")
	f.StringVar(&opts.elementType, "element-type", utils.DefaultElementType, "KEYWORD value that marks a collimator")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logFile, "log", "", "optional log file path (stderr is always included)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-collimator diagnostics")

	cmd.AddCommand(newInspectCmd())
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <settings-file>",
		Short: "Parse a settings file and print its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := controller.InspectSettings(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(models.CollimatorRecord{}.SettingsHeader(), "\t"))
			for i := range recs {
				fmt.Fprintln(out, strings.Join(recs[i].SettingsRow(), "\t"))
			}
			utils.L().Info("inspected %s  (collimators=%d)", args[0], len(recs))
			return nil
		},
	}
}

// resolveConfig loads the config file, if any, then applies flags the user
// set explicitly. Unset flags never override file values.
func resolveConfig(cmd *cobra.Command, opts *options) (*utils.GapConfig, error) {
	cfg := utils.DefaultGapConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = utils.LoadGapConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("tfs") {
		cfg.Input.OpticsPath = opts.opticsPath
	}
	if flags.Changed("element-type") {
		cfg.Input.ElementType = opts.elementType
	}
	if flags.Changed("out") {
		cfg.Output.Path = opts.outPath
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	return cfg, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, models.ErrInputNotFound):
		return exitNotFound
	case errors.Is(err, models.ErrInputMalformed):
		return exitMalformed
	case errors.Is(err, models.ErrOutputWriteFailed):
		return exitWriteFailed
	}
	return exitOther
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "collgaps:", err)
	}
	os.Exit(exitCode(err))
}
