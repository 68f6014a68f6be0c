// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/dielectric/backend"
	"github.com/katalvlaran/dielectric/config"
)

// app is the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgPath string
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: config.New(), out: out, errOut: errOut}
	d := config.Defaults()

	root := &cobra.Command{
		Use:           "respond",
		Short:         "Sum-over-states response functions over a frequency range",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML configuration file")
	pf.String("element", d.Element, "element type: float32, float64, complex64, complex128 (or float, double, cfloat, cdouble)")
	pf.String("format", d.Input.Format, "matrix file format: auto, binary, text")
	pf.String("log-level", d.Log.Level, "log level: trace, debug, info, warn, error")
	pf.String("log-file", d.Log.File, "per-rank log file base, <base>.<rank>.log; empty logs to stderr")
	pf.String("log-format", d.Log.Format, "log format: text, json")
	bind(a.v, root, map[string]string{
		"element":      "element",
		"input.format": "format",
		"log.level":    "log-level",
		"log.file":     "log-file",
		"log.format":   "log-format",
	})

	root.AddCommand(
		newRunCmd(a),
		newWorkerCmd(a),
		newSolveCmd(a),
		newPotentialCmd(a),
		newEpsilonCmd(a),
		newLossCmd(a),
		newConfigCmd(a),
	)

	return root
}

// bind ties viper keys to flags of cmd; a missing flag is a programming error.
func bind(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("bind %s to --%s: %v", key, name, err))
		}
	}
}

// load returns the validated configuration.
func (a *app) load() (*config.Config, error) { return config.Load(a.v, a.cfgPath) }

// read returns the configuration without validating inputs; commands that
// name their files on the command line use it.
func (a *app) read() (*config.Config, error) { return config.Read(a.v, a.cfgPath) }

// logger builds the logger of rank; close releases its log file.
func (a *app) logger(c config.Log, rank int) (log *logrus.Logger, closeFn func() error, err error) {
	log = logrus.New()
	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log.level: %w", err)
	}
	log.SetLevel(lvl)
	switch c.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if c.File == "" {
		log.SetOutput(a.errOut)

		return log, func() error { return nil }, nil
	}
	f, err := os.OpenFile(fmt.Sprintf("%s.%d.log", c.File, rank), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log.file: %w", err)
	}
	log.SetOutput(f)

	return log, f.Close, nil
}

// output opens the result destination; "-" is the command's stdout.
func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return a.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	return f, f.Close, nil
}

// byElement calls the body instantiated for the configured element type.
func byElement(element string, f32, f64, c64, c128 func() error) error {
	k, ok := backend.ParseKind(element)
	if !ok {
		return fmt.Errorf("element %q: %w", element, config.ErrInvalidConfig)
	}
	switch k {
	case backend.KindFloat32:
		return f32()
	case backend.KindFloat64:
		return f64()
	case backend.KindComplex64:
		return c64()
	default:
		return c128()
	}
}
