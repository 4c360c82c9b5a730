package extract

import "strings"

// DetectLanguage guesses the programming language of a snippet using cheap
// textual heuristics. Returns "unknown" when nothing matches. Intended for
// labeling untagged blocks, not for validation.
func DetectLanguage(code string) string {
	trimmed := strings.TrimSpace(code)

	switch {
	case strings.HasPrefix(trimmed, "<?php"):
		return "php"
	case strings.Contains(code, "package ") && strings.Contains(code, "func "):
		return "go"
	case strings.Contains(code, "def ") && strings.Contains(code, ":") &&
		(strings.Contains(code, "import ") || strings.Contains(code, "class ")):
		return "python"
	case strings.Contains(code, "function") && strings.Contains(code, "{") && strings.Contains(code, ";"):
		if strings.Contains(code, "import React") || strings.Contains(code, ": string") {
			return "typescript"
		}
		return "javascript"
	case strings.Contains(code, "public class") || strings.Contains(code, "private class"):
		return "java"
	case strings.Contains(code, "#include"):
		if strings.Contains(code, "cout") || strings.Contains(code, "::") {
			return "cpp"
		}
		return "c"
	}
	return "unknown"
}

// LooksBalanced performs a shallow syntax sanity check: brace and parenthesis
// counts must match for brace-delimited languages. Languages without a check
// pass by default.
func LooksBalanced(code, language string) bool {
	switch language {
	case "javascript", "typescript", "java", "go", "c", "cpp", "csharp":
		return strings.Count(code, "{") == strings.Count(code, "}") &&
			strings.Count(code, "(") == strings.Count(code, ")")
	}
	return true
}
