package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/bodgit/terrain"
	"github.com/bodgit/terrain/config"
	"github.com/bodgit/terrain/palette"
	"github.com/bodgit/terrain/tile"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	defaultChunkSize = 1024
	defaultColors    = 8
)

var errNoLedger = errors.New("no ledger, use --db")

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func openLedger(c *cli.Context) (*terrain.Ledger, error) {
	if c.String("db") == "" {
		return nil, nil
	}
	return terrain.NewLedger(c.String("db"))
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.Args().First())
	if err != nil {
		return nil, err
	}

	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("target-size") {
		cfg.TargetSize = c.Int("target-size")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func bake(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c.Bool("verbose"), c.String("log-file"))
	defer logger.Sync()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	ledger, err := openLedger(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if ledger != nil {
		defer ledger.Close()
	}

	b, err := terrain.New(cfg, ledger, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := b.SetIncremental(c.Bool("incremental")); err != nil {
		return cli.NewExitError(err, 1)
	}

	logger.Info("Baking tiles",
		zap.String("input", cfg.InputDir),
		zap.String("output", cfg.OutputDir),
		zap.Int("size", cfg.TargetSize),
		zap.Bool("debug", cfg.Debug),
		zap.Int("jobs", c.Int("jobs")))

	s, err := b.Run(c.Int("jobs"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if s.Mosaic != "" {
		fmt.Println(s.Mosaic)
	}

	return nil
}

func stitch(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c.Bool("verbose"), c.String("log-file"))
	defer logger.Sync()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	b, err := terrain.New(cfg, nil, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	mosaic, err := b.Stitch()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Println(mosaic)

	return nil
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

func slice(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c.Bool("verbose"), c.String("log-file"))
	defer logger.Sync()

	m, err := decodeFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	dir := c.Args().Get(1)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return cli.NewExitError(err, 1)
	}

	n := 0
	if err := tile.Slice(m, c.Int("size"), func(tc tile.Coordinate, t image.Image) error {
		file := filepath.Join(dir, tile.Name(tile.SourcePrefix, tc))

		f, err := os.Create(file)
		if err != nil {
			return err
		}
		if err := png.Encode(f, t); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		logger.Debug("Saved chunk", zap.String("file", file))
		n++

		return nil
	}); err != nil {
		return cli.NewExitError(err, 1)
	}

	logger.Info("Sliced map", zap.Int("chunks", n), zap.String("output", dir))

	return nil
}

func suggest(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	method, err := palette.ParseMethod(c.String("method"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := decodeFile(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	candidates, err := palette.Extract(m, c.Int("colors"), method)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "HEX\tRGB\tPIXELS")
	for _, cand := range candidates {
		fmt.Fprintf(w, "%s\t[%d, %d, %d]\t%d\n", cand.Hex(), cand.Color.R, cand.Color.G, cand.Color.B, cand.Count)
	}

	return w.Flush()
}

func status(c *cli.Context) error {
	ledger, err := openLedger(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if ledger == nil {
		return cli.NewExitError(errNoLedger, 1)
	}
	defer ledger.Close()

	var cfg *config.Config
	if c.IsSet("verify") {
		if cfg, err = config.Load(c.String("verify")); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	records, err := ledger.Records()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	bad := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "TILE\tSOURCE\tHOLES\tGAPS\tCOMPONENTS\tBAKED\tSTATE")
	for _, r := range records {
		state := "-"
		if cfg != nil {
			state = "ok"
			switch {
			case r.Config != cfg.Fingerprint():
				state = "stale"
			default:
				if err := terrain.VerifyTexture(filepath.Join(cfg.OutputDir, tile.Name(tile.DataPrefix, r.Coordinate)), cfg.TargetSize); err != nil {
					state = "invalid"
					bad++
				}
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d -> %d\t%s\t%s\n", r.Coordinate, filepath.Base(r.Source), r.HolesFilled, r.DiagonalGapsFixed, r.ComponentsBefore, r.ComponentsAfter, r.BakedAt.Format("2006-01-02 15:04:05"), state)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if bad > 0 {
		return cli.NewExitError(fmt.Sprintf("%d invalid data textures", bad), 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "terrain"
	app.Usage = "Bake painted map chunks into terrain data textures"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"TERRAIN_DB"},
			Usage:   "path to bake ledger",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "also log to `FILE`, rotated",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "bake",
			Usage:     "Bake source chunks into data textures",
			ArgsUsage: "CONFIG",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "jobs",
					Value: runtime.NumCPU(),
					Usage: "number of tiles to bake in parallel",
				},
				&cli.BoolFlag{
					Name:  "debug",
					Usage: "write debug overlays and stitch them",
				},
				&cli.IntFlag{
					Name:  "target-size",
					Usage: "override the configured target size",
				},
				&cli.BoolFlag{
					Name:  "incremental",
					Usage: "skip tiles unchanged since the last bake, needs --db",
				},
			},
			Action: bake,
		},
		{
			Name:      "stitch",
			Usage:     "Stitch existing debug overlays into one image",
			ArgsUsage: "CONFIG",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "target-size",
					Usage: "override the configured target size",
				},
			},
			Action: stitch,
		},
		{
			Name:      "slice",
			Usage:     "Cut a large map into source chunks",
			ArgsUsage: "IMAGE DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "size",
					Value: defaultChunkSize,
					Usage: "chunk size in pixels",
				},
			},
			Action: slice,
		},
		{
			Name:      "palette",
			Usage:     "Suggest terrain colours from an image",
			ArgsUsage: "IMAGE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Value: defaultColors,
					Usage: "number of colours",
				},
				&cli.StringFlag{
					Name:  "method",
					Value: palette.MethodMedianCut.String(),
					Usage: "median, kmeans or dominant",
				},
			},
			Action: suggest,
		},
		{
			Name:  "status",
			Usage: "List baked tiles from the ledger",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "verify",
					Usage: "check data textures against `CONFIG`",
				},
			},
			Action: status,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
