package table

import "github.com/zeebo/xxh3"

const (
	unitSep   = "\x1f"
	recordSep = "\x1e"
)

// Fingerprint hashes a header and rows. Equal tables hash equal regardless of
// delimiter, which lets callers detect that a rewrite changed nothing.
func Fingerprint(header []string, rows [][]string) uint64 {
	h := xxh3.New()
	writeRecord(h, header)
	for _, r := range rows {
		writeRecord(h, r)
	}
	return h.Sum64()
}

func writeRecord(h *xxh3.Hasher, rec []string) {
	for _, cell := range rec {
		_, _ = h.WriteString(cell)
		_, _ = h.WriteString(unitSep)
	}
	_, _ = h.WriteString(recordSep)
}
