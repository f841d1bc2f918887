// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command gzip is a gzip-compatible compressor/decompressor front end
// over the flate/gzip packages.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/elliotnunn/godeflate/flate"
	"github.com/elliotnunn/godeflate/gzip"
)

var (
	levelFlags  [10]bool // -1 .. -9, and -0 as an alias for no compression
	decompress  = flag.Bool("d", false, "decompress")
	force       = flag.Bool("f", false, "force overwrite of output file")
	keep        = flag.Bool("k", false, "keep (don't delete) input files")
	stdout      = flag.Bool("c", false, "write to standard output, keep original files")
	noName      = flag.Bool("n", false, "omit/ignore original file name and timestamp")
	quiet       = flag.Bool("q", false, "suppress warnings")
	test        = flag.Bool("t", false, "test compressed file integrity")
	showVersion = flag.Bool("V", false, "show version")
	showHelp    = flag.Bool("h", false, "show this help")
	suffix      = flag.String("S", ".gz", "suffix for compressed files")
)

func init() {
	for i := range levelFlags {
		flag.BoolVar(&levelFlags[i], fmt.Sprint(i), false, fmt.Sprintf("compression level %d", i))
	}
}

// Exit codes follow gzip(1): 0 clean, 1 error, 2 warnings only.
const (
	exitOK      = 0
	exitError   = 1
	exitWarning = 2
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showHelp {
		usage()
		os.Exit(exitOK)
	}
	if *showVersion {
		fmt.Println("gzip (godeflate) 1.0")
		os.Exit(exitOK)
	}

	logLevel := slog.LevelInfo
	if *quiet {
		logLevel = slog.LevelError
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	level := flate.DefaultCompression
	for i, set := range levelFlags {
		if set {
			level = i
		}
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}

	exitCode := exitOK
	for _, name := range args {
		warned, err := processFile(name, level, log)
		switch {
		case err != nil:
			log.Error("gzip", "file", name, "error", err)
			exitCode = exitError
		case warned && exitCode == exitOK:
			exitCode = exitWarning
		}
	}
	os.Exit(exitCode)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: gzip [-cdfhknqtV] [-1..9] [-S suffix] [file ...]\n")
	flag.PrintDefaults()
}

func processFile(name string, level int, log *slog.Logger) (warned bool, err error) {
	switch {
	case *test:
		return false, testFile(name)
	case *decompress || (name != "-" && strings.HasSuffix(name, *suffix) && !isCompressMode()):
		return decompressFile(name, log)
	default:
		return compressFile(name, level, log)
	}
}

// isCompressMode reports whether the user explicitly asked for
// compression despite a .gz-suffixed argument (a level flag says so).
func isCompressMode() bool {
	for _, set := range levelFlags {
		if set {
			return true
		}
	}
	return false
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func openOutput(name string) (io.WriteCloser, error) {
	if *stdout || name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !*force {
		flags |= os.O_EXCL
	}
	return os.OpenFile(name, flags, 0o644)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// restoreMetadata copies the source file's mode and modification time onto
// the freshly written output, the way gzip(1) preserves them.
func restoreMetadata(src, dst string) {
	if src == "-" || dst == "-" || *stdout {
		return
	}
	info, err := os.Stat(src)
	if err != nil {
		return
	}
	os.Chmod(dst, info.Mode().Perm())
	os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func compressFile(name string, level int, log *slog.Logger) (warned bool, err error) {
	if name != "-" && strings.HasSuffix(name, *suffix) {
		log.Warn("already has suffix -- unchanged", "file", name, "suffix", *suffix)
		return true, nil
	}

	in, err := openInput(name)
	if err != nil {
		return false, err
	}
	defer in.Close()

	outName := name + *suffix
	if name == "-" {
		outName = "-"
	}
	out, err := openOutput(outName)
	if err != nil {
		return false, err
	}
	defer out.Close()

	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		return false, err
	}
	if !*noName && name != "-" {
		zw.Header.Name = name
		if info, serr := os.Stat(name); serr == nil {
			zw.Header.ModTime = info.ModTime()
		}
	}
	if _, err := io.Copy(zw, in); err != nil {
		return false, err
	}
	if err := zw.Close(); err != nil {
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	restoreMetadata(name, outName)

	if name != "-" && !*keep && !*stdout {
		log.Debug("removing input after compression", "file", name)
		os.Remove(name)
	}
	return false, nil
}

func decompressFile(name string, log *slog.Logger) (warned bool, err error) {
	if name != "-" && !strings.HasSuffix(name, *suffix) {
		log.Warn("unknown suffix -- ignored", "file", name)
		return true, nil
	}

	in, err := openInput(name)
	if err != nil {
		return false, err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return false, err
	}
	defer zr.Close()

	outName := strings.TrimSuffix(name, *suffix)
	if name == "-" || outName == name {
		outName = "-"
	}
	out, err := openOutput(outName)
	if err != nil {
		return false, err
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	restoreMetadata(name, outName)

	if name != "-" && !*keep && !*stdout {
		log.Debug("removing input after decompression", "file", name)
		os.Remove(name)
	}
	return false, nil
}

func testFile(name string) error {
	in, err := openInput(name)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	_, err = io.Copy(io.Discard, zr)
	return err
}
