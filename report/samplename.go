package report

import (
	"path/filepath"
	"strings"
)

// Cleaner turns file names and sample IDs found in logs into display names.
type Cleaner struct {
	opts Opts
}

// NewCleaner creates a Cleaner using opts.CleanExts and the PrependDirs
// options.
func NewCleaner(opts Opts) *Cleaner {
	return &Cleaner{opts: opts}
}

// CleanSampleName strips any directory from raw and truncates it at the
// first configured extension, e.g. "/data/s1_R1.fastq.gz" becomes "s1_R1".
// root is the directory of the log, relative to the search root; it is only
// used when PrependDirs is set.  If cleaning leaves nothing, raw is returned.
func (c *Cleaner) CleanSampleName(raw, root string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	for _, ext := range c.opts.CleanExts {
		if ext == "" {
			continue
		}
		// An extension at position 0 would leave an empty name.
		if i := strings.Index(name, ext); i > 0 {
			name = name[:i]
		}
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return raw
	}
	if c.opts.PrependDirs {
		if prefix := c.dirPrefix(root); prefix != "" {
			name = prefix + c.opts.DirsSeparator + name
		}
	}
	return name
}

func (c *Cleaner) dirPrefix(root string) string {
	var dirs []string
	for _, d := range strings.Split(filepath.ToSlash(filepath.Clean(root)), "/") {
		if d != "" && d != "." {
			dirs = append(dirs, d)
		}
	}
	if n := c.opts.DirsDepth; n > 0 && len(dirs) > n {
		dirs = dirs[len(dirs)-n:]
	}
	return strings.Join(dirs, c.opts.DirsSeparator)
}
