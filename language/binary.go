package language

// binarySniffLen is how many leading bytes are inspected for binary detection.
const binarySniffLen = 512

// IsBinaryContent reports whether data looks like binary content. A NUL byte
// within the sniff window is taken as binary; text encodings in source trees
// do not contain NUL.
func IsBinaryContent(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}

	for _, b := range sniff {
		if b == 0 {
			return true
		}
	}
	return false
}
