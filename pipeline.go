package terrain

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // source chunk format
	_ "image/jpeg" // source chunk format
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	timage "github.com/bodgit/terrain/image"
	"github.com/bodgit/terrain/tile"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // source chunk format
	_ "golang.org/x/image/tiff" // source chunk format
	_ "golang.org/x/image/webp" // source chunk format
)

var sourceExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// Summary reports the outcome of a run
type Summary struct {
	Baked   int
	Skipped int // unchanged since the last run
	Failed  int // unreadable or undecodable chunks
	Mosaic  string
}

type counters struct {
	baked, skipped, failed atomic.Int64
}

type job struct {
	file  string
	coord tile.Coordinate
}

func (b *Baker) findTiles(ctx context.Context, base string) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		seen := make(map[tile.Coordinate]string)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if file == base {
				return nil
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Chunks are only read from the top directory
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(file))]; !ok {
				return nil
			}

			prefix, c, err := tile.Parse(file)
			if err != nil {
				b.logger.Debug("Ignoring file without tile coordinate", zap.String("file", file))
				return nil
			}
			if prefix == tile.DataPrefix || prefix == tile.DebugPrefix {
				return nil
			}

			if other, ok := seen[c]; ok {
				b.logger.Warn("Ignoring duplicate tile", zap.String("file", file), zap.String("first", other), zap.Stringer("tile", c))
				return nil
			}
			seen[c] = file

			select {
			case out <- job{file: file, coord: c}:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func writeFile(file string, fn func(io.Writer) error) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := fn(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (b *Baker) unchanged(c tile.Coordinate, sha, dataFile string) (bool, error) {
	r, err := b.ledger.Find(c)
	if err != nil || r == nil {
		return false, err
	}
	if r.SHA1 != sha || r.Config != b.cfg.Fingerprint() {
		return false, nil
	}
	if _, err := os.Stat(dataFile); err != nil {
		return false, nil
	}
	return true, nil
}

// bakeFile only returns an error for failures that should stop the run. A
// chunk that cannot be read is logged and counted.
func (b *Baker) bakeFile(j job, n *counters) error {
	logger := b.logger.With(zap.String("file", j.file), zap.Stringer("tile", j.coord))

	data, err := os.ReadFile(j.file)
	if err != nil {
		logger.Warn("Skipping unreadable tile", zap.Error(err))
		n.failed.Add(1)
		return nil
	}
	sha := fmt.Sprintf("%X", sha1.Sum(data))

	dataFile := filepath.Join(b.cfg.OutputDir, tile.Name(tile.DataPrefix, j.coord))

	if b.incremental && !b.opts.Debug {
		unchanged, err := b.unchanged(j.coord, sha, dataFile)
		if err != nil {
			return err
		}
		if unchanged {
			logger.Debug("Skipping unchanged tile")
			n.skipped.Add(1)
			return nil
		}
	}

	m, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("Skipping corrupt tile", zap.Error(err))
		n.failed.Add(1)
		return nil
	}

	r := BakeTile(m, b.opts)

	if err := writeFile(dataFile, func(w io.Writer) error {
		return timage.Encode(w, r.Grid)
	}); err != nil {
		return err
	}

	if r.Overlay != nil {
		if err := writeFile(filepath.Join(b.cfg.DebugDir, tile.Name(tile.DebugPrefix, j.coord)), func(w io.Writer) error {
			return png.Encode(w, r.Overlay)
		}); err != nil {
			return err
		}
	}

	if b.ledger != nil {
		if err := b.ledger.Record(Record{
			Coordinate:        j.coord,
			Source:            j.file,
			SHA1:              sha,
			Config:            b.cfg.Fingerprint(),
			HolesFilled:       r.HolesFilled,
			DiagonalGapsFixed: r.DiagonalGapsFixed,
			ComponentsBefore:  r.ComponentsBefore,
			ComponentsAfter:   r.ComponentsAfter,
			BakedAt:           timeNow(),
		}); err != nil {
			return err
		}
	}

	if ce := logger.Check(zap.DebugLevel, "Terrain histogram"); ce != nil {
		var fields []zap.Field
		for id, n := range r.Grid.Histogram() {
			if n > 0 {
				fields = append(fields, zap.Int(strconv.Itoa(id), n))
			}
		}
		ce.Write(fields...)
	}

	logger.Info("Baked tile",
		zap.Int("holes_filled", r.HolesFilled),
		zap.Int("diagonal_gaps_fixed", r.DiagonalGapsFixed),
		zap.Int("components_before", r.ComponentsBefore),
		zap.Int("components_after", r.ComponentsAfter))
	n.baked.Add(1)

	return nil
}

func (b *Baker) tileWorker(ctx context.Context, in <-chan job, n *counters) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := b.bakeFile(j, n); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Stitch assembles the debug overlays in the debug directory into a single
// mosaic and removes the overlays that were stitched. It returns the path of
// the mosaic.
func (b *Baker) Stitch() (string, error) {
	entries, err := os.ReadDir(b.cfg.DebugDir)
	if err != nil {
		return "", err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		if prefix, _, err := tile.Parse(e.Name()); err == nil && prefix == tile.DebugPrefix {
			files = append(files, filepath.Join(b.cfg.DebugDir, e.Name()))
		}
	}

	m, used, err := tile.StitchFiles(files, b.cfg.TargetSize, b.logger)
	if err != nil {
		return "", err
	}

	out := filepath.Join(b.cfg.DebugDir, tile.MosaicFilename)
	if err := writeFile(out, func(w io.Writer) error {
		return png.Encode(w, m)
	}); err != nil {
		return "", err
	}
	b.logger.Info("Saved debug mosaic", zap.String("file", out), zap.Int("width", m.Bounds().Dx()), zap.Int("height", m.Bounds().Dy()))

	for _, file := range used {
		if err := os.Remove(file); err != nil {
			b.logger.Warn("Failed to remove debug tile", zap.String("file", file), zap.Error(err))
		}
	}

	return out, nil
}

// Run bakes every chunk in the input directory using the given number of
// workers and, in debug mode, stitches the overlays once all chunks are done
func (b *Baker) Run(jobs int) (*Summary, error) {
	if jobs < 1 {
		jobs = 1
	}

	dir, err := filepath.Abs(b.cfg.InputDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return nil, err
	}
	if b.opts.Debug {
		if err := os.MkdirAll(b.cfg.DebugDir, 0755); err != nil {
			return nil, err
		}
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var (
		n        counters
		errcList []<-chan error
	)

	tiles, errc, err := b.findTiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	for i := 0; i < jobs; i++ {
		errc, err := b.tileWorker(ctx, tiles, &n)
		if err != nil {
			return nil, err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}

	s := &Summary{
		Baked:   int(n.baked.Load()),
		Skipped: int(n.skipped.Load()),
		Failed:  int(n.failed.Load()),
	}
	b.logger.Info("Finished baking", zap.Int("baked", s.Baked), zap.Int("skipped", s.Skipped), zap.Int("failed", s.Failed))

	// Every worker has finished so every overlay is on disk
	if b.opts.Debug {
		mosaic, err := b.Stitch()
		switch err {
		case nil:
			s.Mosaic = mosaic
		case tile.ErrNoTiles:
			b.logger.Warn("No debug tiles found to stitch")
		default:
			return nil, err
		}
	}

	return s, nil
}
