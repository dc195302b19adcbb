package worker

// ChunkStrings splits items into consecutive chunks of at most size
// elements, preserving order. Label lookups go through this because
// wbgetentities caps a single request at 50 IDs.
func ChunkStrings(items []string, size int) [][]string {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}

	return chunks
}
