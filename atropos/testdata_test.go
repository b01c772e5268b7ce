package atropos

import "strconv"

// Two single-end reports concatenated in one file.  sampleA has bp_written;
// sampleB only has bp_trimmed and quality_trimmed.
const singleEndLog = `Atropos version: 1.1.5
Python version: 3.6.1
Command line parameters: trim -a AGATCGGAAGAGC -se sampleA.fastq.gz -o out.fq.gz
Sample ID: sampleA.fastq.gz
Input format: Single-end, FASTQ
Input files: sampleA.fastq.gz

=======
Trimming
=======

Total reads processed:                  1,000
Reads with adapter:                       300 (30.0%)
Reads written (passing filters):          950 (95.0%)

Total bp processed:                     1,000
Quality-trimmed:                            0 (0.0%)
Total bp written (filtered):              800 (80.0%)

Adapter 1
-------------------------------------------------------------------

Sequence                    Length  Type         Trimmed
-------------------------------------------------------------------
AGATCGGAAGAGC               13      regular 3'   300

Overview of removed sequences:
length  count  expect  max.err  error counts
-------------------------------------------------------------------
     3    100    15.6        0  100
    10    500   450.2        1  490 10
    13  1,200     0.1        1  1,150 50

Atropos version: 1.1.5
Sample ID: sampleB
Input format: Single-end, FASTQ

Total reads processed:                  2,000
Reads with adapter:                       100 (5.0%)
Reads written (passing filters):        1,500 (75.0%)

Total bp processed:                     1,000
Total bp trimmed:                         150 (15.0%)
Quality-trimmed:                           50 (5.0%)

Adapter 1
-------------------------------------------------------------------

Sequence                    Length  Type         Trimmed
-------------------------------------------------------------------
AGATCGGAAGAGC               13      regular 3'   100

Overview of removed sequences:
length  count  expect  max.err  error counts
-------------------------------------------------------------------
     5     60     3.9        0  60
     6     40     1.0        0  40
`

const pairedEndLog = `Atropos version: 1.1.5
Sample ID: pairA
Input format: Paired, FASTQ

Total read pairs processed:             1,000
  Read 1 with adapter:                    300 (30.0%)
  Read 2 with adapter:                    280 (28.0%)
Pairs written (passing filters):          990 (99.0%)

Total bp processed:                   200,000
  Read 1:                             100,000
  Read 2:                             100,000
Quality-trimmed:                        1,000 (0.5%)
Total bp written (filtered):          190,000 (95.0%)

First read: Adapter 1
-------------------------------------------------------------------

Sequence                    Length  Type         Trimmed
-------------------------------------------------------------------
AGATCGGAAGAGCACACGTCT       21      regular 3'   300

Overview of removed sequences:
length  count  expect  max.err  error counts
-------------------------------------------------------------------
     3    200    15.6        0  200
     4    100     3.9        0  100

Second read: Adapter 2
-------------------------------------------------------------------

Sequence                    Length  Type         Trimmed
-------------------------------------------------------------------
AGATCGGAAGAGCGTCGTGTAGG     23      regular 3'   280

Overview of removed sequences:
length  count  expect  max.err  error counts
-------------------------------------------------------------------
     3    280    15.6        0  280
`

// adapterBlock returns an adapter section for seq with the given histogram
// rows, or without an overview if rows is empty.
func adapterBlock(seq string, rows ...string) string {
	s := "Adapter 1\n" +
		"-----------------------------------\n" +
		"\n" +
		"Sequence  Length  Type  Trimmed\n" +
		"-----------------------------------\n" +
		seq + "  4  regular 3'  10\n" +
		"\n"
	if len(rows) == 0 {
		return s
	}
	s += "Overview of removed sequences:\n" +
		"length  count  expect  max.err  error counts\n" +
		"-----------------------------------\n"
	for _, r := range rows {
		s += r + "\n"
	}
	return s + "\n"
}

// sampleHeader starts a report for a single-end sample with the required
// counters.
func sampleHeader(name string, processed, written int) string {
	return "Atropos version: 1.1.5\n" +
		"Sample ID: " + name + "\n" +
		"Input format: Single-end, FASTQ\n" +
		"Total reads processed: " + strconv.Itoa(processed) + "\n" +
		"Reads written (passing filters): " + strconv.Itoa(written) + " (0.0%)\n"
}
