// Package extract derives structured artifacts from free-form agent output.
// All functions are pure and idempotent: calling them twice on the same text
// yields identical results.
package extract

import "strings"

// Block is one fenced code block pulled from a message. Language is the
// lowercased fence tag, or empty when the fence carried none (or when the
// whole text was returned as a single untagged block).
type Block struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Blocks scans text for fenced code blocks. A fence is a line consisting of
// three backticks optionally followed by a language tag; the matching close
// is a bare three-backtick line. Content between fences is returned verbatim.
//
// When no fence is present the whole text is returned as a single block with
// an empty language, modeling free text as the artifact.
func Blocks(text string) []Block {
	lines := strings.Split(text, "\n")

	var (
		blocks  []Block
		body    []string
		lang    string
		inFence bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inFence {
			if tag, ok := fenceTag(trimmed); ok {
				inFence = true
				lang = tag
				body = body[:0]
			}
			continue
		}
		if trimmed == "```" {
			blocks = append(blocks, Block{Language: lang, Code: strings.Join(body, "\n")})
			inFence = false
			continue
		}
		body = append(body, line)
	}

	if len(blocks) == 0 {
		return []Block{{Code: text}}
	}
	return blocks
}

// fenceTag reports whether a trimmed line opens a fence and returns its
// lowercased language tag. Lines like "```python extra" are not fences.
func fenceTag(line string) (string, bool) {
	if !strings.HasPrefix(line, "```") {
		return "", false
	}
	tag := strings.TrimPrefix(line, "```")
	if strings.ContainsAny(tag, " \t`") {
		return "", false
	}
	return strings.ToLower(tag), true
}

// First returns the first block matching any of the given languages, or the
// first block overall when no language is given or none match.
func First(blocks []Block, languages ...string) (Block, bool) {
	if len(blocks) == 0 {
		return Block{}, false
	}
	for _, want := range languages {
		for _, b := range blocks {
			if b.Language == want {
				return b, true
			}
		}
	}
	return blocks[0], true
}
