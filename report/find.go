// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package report

import (
	"bufio"
	"context"
	"io"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// sniffLineSize bounds the lines read while sniffing.  A file whose leading
// lines are longer than this is not a log.
const sniffLineSize = 1 << 20

// FindLogs lists the files under roots, recursively, and returns those that
// mention marker within their first SniffLines lines and are no larger than
// MaxLogSize.  Logs with identical contents, e.g. reached through a symlink,
// are returned once.  The result is sorted by path.
func FindLogs(ctx context.Context, roots []string, marker string, c *Cleaner) ([]LogFile, error) {
	var (
		logs []LogFile
		seen = make(map[uint64]string)
	)
	for _, root := range roots {
		lister := file.List(ctx, root, true /*recursive*/)
		for lister.Scan() {
			if lister.IsDir() {
				continue
			}
			path := lister.Path()
			match, err := sniff(ctx, path, marker, c.opts.SniffLines)
			if err != nil {
				log.Error.Printf("skipping %s: %v", path, err)
				continue
			}
			if !match {
				continue
			}
			fp, ok, err := fingerprint(ctx, path, c.opts.MaxLogSize)
			if err != nil {
				log.Error.Printf("skipping %s: %v", path, err)
				continue
			}
			if !ok {
				log.Printf("skipping %s: larger than %d bytes", path, c.opts.MaxLogSize)
				continue
			}
			if prev, ok := seen[fp]; ok {
				log.Debug.Printf("%s has the same contents as %s, skipping", path, prev)
				continue
			}
			seen[fp] = path
			logs = append(logs, newLogFile(root, path, c))
		}
		if err := lister.Err(); err != nil {
			return nil, errors.Wrapf(err, "list %s", root)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Path < logs[j].Path })
	return logs, nil
}

// NewLogFile describes a log given on the command line rather than found
// under a search root.
func NewLogFile(path string, c *Cleaner) LogFile {
	return newLogFile(filepath.Dir(path), path, c)
}

func newLogFile(root, path string, c *Cleaner) LogFile {
	dir := filepath.Dir(path)
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = dir
	}
	return LogFile{
		Path:       path,
		Root:       rel,
		SampleName: c.CleanSampleName(filepath.Base(path), rel),
	}
}

// sniff reports whether marker occurs in the first n lines of the file at
// path.  It reads no further than those lines.
func sniff(ctx context.Context, path, marker string, n int) (match bool, err error) {
	in, err := Open(ctx, path)
	if err != nil {
		return false, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, sniffLineSize)
	for i := 0; i < n && scanner.Scan(); i++ {
		if strings.Contains(scanner.Text(), marker) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil && err != bufio.ErrTooLong {
		return false, errors.Wrapf(err, "read %s", path)
	}
	return false, nil
}

// fingerprint hashes the uncompressed contents of the file at path.  ok is
// false if they exceed limit bytes, in which case at most limit+1 bytes are
// read.
func fingerprint(ctx context.Context, path string, limit int64) (fp uint64, ok bool, err error) {
	in, err := Open(ctx, path)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	data, err := ioutil.ReadAll(io.LimitReader(in, limit+1))
	if err != nil {
		return 0, false, errors.Wrapf(err, "read %s", path)
	}
	if int64(len(data)) > limit {
		return 0, false, nil
	}
	return farm.Fingerprint64(data), true, nil
}
