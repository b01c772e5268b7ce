package atropos

import "errors"

// ErrNoData is returned by Module.Run when no sample could be read from any
// report.  Hosts should skip the Atropos section rather than fail.
var ErrNoData = errors.New("atropos: no reports found")
