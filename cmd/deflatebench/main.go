// Command deflatebench benchmarks compression ratio and round-trip
// correctness across a corpus of files. It persists per-file results in
// an on-disk KV store so repeat runs over an unchanged corpus skip
// redundant work, and caches decompressed payloads in memory to speed up
// the checksum cross-check pass.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"
	"github.com/therootcompany/xz"

	"github.com/elliotnunn/godeflate/checksum"
	"github.com/elliotnunn/godeflate/flate"
	"github.com/elliotnunn/godeflate/internal/cpufeatures"
	"github.com/elliotnunn/godeflate/internal/streamcache"
)

var (
	corpusDir = flag.String("corpus", ".", "root directory to scan")
	pattern   = flag.String("pattern", "**/*", "doublestar glob of files to include")
	level     = flag.Int("level", 6, "compression level to benchmark (0-12)")
	cacheDir  = flag.String("cachedir", "", "pebble directory for persisted results (empty disables)")
)

type fileResult struct {
	rawSize        int
	compressedSize int
	crc32          uint32
}

func main() {
	flag.Parse()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	log.Info("deflatebench starting", "wideCompare", cpufeatures.WideCompareSupported())

	var resultStore *pebble.DB
	if *cacheDir != "" {
		db, err := pebble.Open(*cacheDir, &pebble.Options{})
		if err != nil {
			log.Error("opening result cache", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		resultStore = db
	}

	ctx := context.Background()
	decompCache, err := streamcache.New(ctx, 5*time.Minute)
	if err != nil {
		log.Error("creating decompression cache", "error", err)
		os.Exit(1)
	}

	admission := tinylfu.New[string, fileResult](1024, 100000, func(k string) uint64 {
		return xxhash.Sum64String(k)
	})

	files, err := findCorpus(*corpusDir, *pattern)
	if err != nil {
		log.Error("scanning corpus", "error", err)
		os.Exit(1)
	}

	var totalRaw, totalCompressed int
	for _, f := range files {
		if cached, ok := admission.Get(f); ok {
			totalRaw += cached.rawSize
			totalCompressed += cached.compressedSize
			continue
		}

		result, err := benchmarkFile(f, *level, resultStore, decompCache)
		if err != nil {
			log.Warn("benchmark failed", "file", f, "error", err)
			continue
		}
		admission.Add(f, result)
		totalRaw += result.rawSize
		totalCompressed += result.compressedSize
	}

	if totalRaw > 0 {
		fmt.Printf("%d files, %d -> %d bytes, ratio %.3f\n",
			len(files), totalRaw, totalCompressed, float64(totalCompressed)/float64(totalRaw))
	}
}

func findCorpus(root, pattern string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		ok, merr := doublestar.Match(pattern, filepath.ToSlash(rel))
		if merr == nil && ok {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}

// readCorpusFile reads path, transparently expanding a .xz-compressed
// corpus entry so pre-compressed reference corpora (as shipped by
// several public benchmark suites) can sit in the corpus directory
// without manual extraction.
func readCorpusFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if filepath.Ext(path) != ".xz" {
		return io.ReadAll(f)
	}
	xr, err := xz.NewReader(f, xz.DefaultDictMax)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(xr)
}

// benchmarkFile compresses and round-trips one file, checking both the
// standard flate-level CRC32 of its decompressed bytes against the
// original (the correctness half of the original implementation's
// test_checksums.c) and recording byte counts (the ratio half of
// benchmark.c). Results are memoized in store, keyed by content hash, so
// an unchanged corpus re-run is nearly free.
func benchmarkFile(path string, level int, store *pebble.DB, decompCache *streamcache.Cache) (fileResult, error) {
	raw, err := readCorpusFile(path)
	if err != nil {
		return fileResult{}, err
	}

	key := fmt.Sprintf("%s@%d:%x", path, level, xxhash.Sum64(raw))
	if store != nil {
		if v, closer, err := store.Get([]byte(key)); err == nil {
			defer closer.Close()
			return decodeResult(v), nil
		}
	}

	compressed := flate.Compress(raw, level)

	cacheKey := streamcache.Key(compressed)
	decompressed, hit := decompCache.Get(cacheKey)
	if !hit {
		decompressed, err = flate.Decompress(compressed)
		if err != nil {
			return fileResult{}, err
		}
		decompCache.Put(cacheKey, decompressed)
	}

	wantCRC := checksum.CRC32(0, raw)
	gotCRC := checksum.CRC32(0, decompressed)
	if wantCRC != gotCRC || len(decompressed) != len(raw) {
		return fileResult{}, fmt.Errorf("round-trip mismatch for %s", path)
	}

	result := fileResult{rawSize: len(raw), compressedSize: len(compressed), crc32: gotCRC}
	if store != nil {
		_ = store.Set([]byte(key), encodeResult(result), pebble.Sync)
	}
	return result, nil
}

func encodeResult(r fileResult) []byte {
	return fmt.Appendf(nil, "%d %d %d", r.rawSize, r.compressedSize, r.crc32)
}

func decodeResult(b []byte) fileResult {
	var r fileResult
	fmt.Sscanf(string(b), "%d %d %d", &r.rawSize, &r.compressedSize, &r.crc32)
	return r
}
