package main

import "strings"

// getLine returns line lineIndex of content without its newline, or ""
// past the end.
func getLine(content string, lineIndex int) string {
	if lineIndex < 0 {
		return ""
	}
	for ; lineIndex > 0; lineIndex-- {
		nl := strings.IndexByte(content, '\n')
		if nl < 0 {
			return ""
		}
		content = content[nl+1:]
	}
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		return content[:nl]
	}
	return content
}

// identifierStart walks left from col over identifier bytes.
func identifierStart(line string, col int) int {
	for col > 0 && isIdentifierChar(line[col-1]) {
		col--
	}
	return col
}

// getWordAtPosition returns the identifier under the cursor. A cursor just
// past the last character still selects the word it ends.
func getWordAtPosition(content string, line, char int) string {
	text := getLine(content, line)
	if char < 0 || char > len(text) {
		return ""
	}
	if char == len(text) || !isIdentifierChar(text[char]) {
		if char == 0 || char < len(text) {
			return ""
		}
		char--
	}

	end := char
	for end < len(text) && isIdentifierChar(text[end]) {
		end++
	}
	return text[identifierStart(text, char):end]
}

// getPrefixAtPosition returns the identifier fragment left of the cursor
func getPrefixAtPosition(content string, line, char int) string {
	text := getLine(content, line)
	if char < 0 {
		return ""
	}
	if char > len(text) {
		char = len(text)
	}
	return text[identifierStart(text, char):char]
}

func isIdentifierChar(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
