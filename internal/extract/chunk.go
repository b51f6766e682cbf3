package extract

// ChunkText splits long text into overlapping windows of chunkSize chars,
// with overlap chars shared between consecutive windows. Text that fits in
// one window is returned as a single chunk; the last chunk may be shorter.
func ChunkText(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		start = start + chunkSize - overlap
	}

	return chunks
}
