package utils

import "strings"

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with an 'overlap' to preserve context at boundaries. When a
// chunk would cut mid-sentence, the cut point is pulled back to the last
// period or newline, as long as that keeps the chunk above half size.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	if overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < totalLen {
		end := start + chunkSize
		if end < totalLen {
			// Walk back to a sentence boundary, but never shrink the
			// chunk below half of chunkSize.
			for i := end; i > start+chunkSize/2; i-- {
				if runes[i-1] == '.' || runes[i-1] == '\n' {
					end = i
					break
				}
			}
		} else {
			end = totalLen
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= totalLen {
			break
		}
		start = end - overlap
	}

	return chunks
}
