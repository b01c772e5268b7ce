package atropos

import (
	"regexp"

	"golang.org/x/mod/semver"
)

// Mode is the read layout of a run, as reported on the "Input format:" line.
type Mode int

const (
	// Single is a single-end run.
	Single Mode = iota
	// Paired is a paired-end run.
	Paired
)

func (m Mode) String() string {
	if m == Paired {
		return "paired"
	}
	return "single"
}

// rule extracts one scalar counter.  The first capture group holds the number,
// possibly with thousands separators.
type rule struct {
	key string
	re  *regexp.Regexp
}

func newRule(key, expr string) rule {
	// Lines reach the parser without their newline, so a trailing \s in the
	// report format must also accept end of line.
	return rule{key: key, re: regexp.MustCompile(expr + `(?:\s|$)`)}
}

// ruleset holds the counter rules for one report format family.
type ruleset struct {
	// minVersion is the oldest Atropos release whose reports use this format.
	minVersion string
	single     []rule
	paired     []rule
}

func (r *ruleset) forMode(m Mode) []rule {
	if m == Paired {
		return r.paired
	}
	return r.single
}

// rulesets is ordered by ascending minVersion.  Reports older than the first
// entry are read with the first entry.
var rulesets = []ruleset{
	{
		minVersion: "1.1.5",
		single: []rule{
			newRule("bp_processed", `Total bp processed:\s*([\d,]+)`),
			newRule("bp_trimmed", `Total bp trimmed:\s*([\d,]+)`),
			newRule("bp_written", `Total bp written \(filtered\):\s*([\d,]+)`),
			newRule("quality_trimmed", `Quality-trimmed:\s*([\d,]+)`),
			newRule("r_processed", `Total reads processed:\s*([\d,]+)`),
			newRule("r_with_adapters", `Reads with adapter:\s*([\d,]+)`),
			newRule("r_written", `Reads written \(passing filters\):\s*([\d,]+)`),
		},
		paired: []rule{
			newRule("bp_processed", `Total bp processed:\s*([\d,]+)`),
			newRule("bp_trimmed", `Total bp trimmed:\s*([\d,]+)`),
			newRule("bp_written", `Total bp written \(filtered\):\s*([\d,]+)`),
			newRule("quality_trimmed", `Quality-trimmed:\s*([\d,]+)`),
			newRule("r_processed", `Total read pairs processed:\s*([\d,]+)`),
			newRule("r1_with_adapters", `Read 1 with adapter:\s*([\d,]+)`),
			newRule("r2_with_adapters", `Read 2 with adapter:\s*([\d,]+)`),
			newRule("r_written", `Pairs written \(passing filters\):\s*([\d,]+)`),
		},
	},
}

// lookupRules returns the ruleset for the given Atropos version, e.g.
// "1.1.21".  It never fails: versions that cannot be compared, or that
// predate every entry, get the oldest ruleset.
func lookupRules(version string) *ruleset {
	v := "v" + version
	if semver.IsValid(v) {
		for i := len(rulesets) - 1; i >= 0; i-- {
			if semver.Compare(v, "v"+rulesets[i].minVersion) >= 0 {
				return &rulesets[i]
			}
		}
	}
	return &rulesets[0]
}
