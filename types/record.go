package types

// FastaRecord is one FASTA entry.
// Title never includes the leading '>'; Sequence has all line breaks and
// surrounding whitespace removed.
type FastaRecord struct {
	Title    string
	Sequence string
}
