package annotate

import "bytes"

// looksBinary reports whether a content sample is likely binary: a null
// byte or a high ratio of non-printable characters.
func looksBinary(sample []byte) bool {
	if len(sample) > 512 {
		sample = sample[:512]
	}
	if len(sample) == 0 {
		return false // empty files are considered text
	}
	if bytes.ContainsRune(sample, 0) {
		return true
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.3
}

// isPrintable checks if a byte represents a printable ASCII character.
func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t'
}
