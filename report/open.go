package report

import (
	"bufio"
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// LogFile is a tool log found by FindLogs.
type LogFile struct {
	// Path of the log.
	Path string
	// Root is the directory of the log relative to the search root.
	Root string
	// SampleName is a display name derived from the file name.  It is used
	// when the log does not name its sample.
	SampleName string
}

type logReader struct {
	io.Reader
	ctx context.Context
	f   file.File
	gz  *gzip.Reader
}

func (r *logReader) Close() error {
	var err error
	if r.gz != nil {
		err = r.gz.Close()
	}
	if e := r.f.Close(r.ctx); e != nil && err == nil {
		err = e
	}
	return err
}

// Open opens the log at path for reading.  Gzip-compressed logs are
// decompressed transparently, whatever their file name.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &logReader{ctx: ctx, f: f}
	br := bufio.NewReader(f.Reader(ctx))
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		if r.gz, err = gzip.NewReader(br); err != nil {
			f.Close(ctx) // nolint: errcheck
			return nil, errors.Wrapf(err, "gzip header of %s", path)
		}
		r.Reader = r.gz
		return r, nil
	}
	r.Reader = br
	return r, nil
}
