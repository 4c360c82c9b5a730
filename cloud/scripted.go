package cloud

import (
	"context"
	"fmt"
	"strings"
)

// ScriptedBackend is a deterministic in-process stand-in for the remote code
// service. It produces language-templated stubs for generation and
// comment-annotated rewrites for optimization, with no randomness, so tests
// and offline runs are reproducible.
type ScriptedBackend struct{}

// NewScriptedBackend constructs the stand-in backend.
func NewScriptedBackend() *ScriptedBackend { return &ScriptedBackend{} }

// Invoke implements core.CloudBackend.
func (b *ScriptedBackend) Invoke(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch endpoint {
	case EndpointGenerate:
		return b.generate(payload)
	case EndpointOptimize:
		return b.optimize(payload)
	}
	return nil, fmt.Errorf("scripted backend: unknown endpoint %q", endpoint)
}

func (b *ScriptedBackend) generate(payload map[string]any) (map[string]any, error) {
	prompt, _ := payload["prompt"].(string)
	if prompt == "" {
		return nil, fmt.Errorf("scripted backend: generate requires a prompt")
	}
	language, _ := payload["language"].(string)
	if language == "" {
		language = "python"
	}

	var code string
	switch strings.ToLower(language) {
	case "go":
		code = fmt.Sprintf("// %s\npackage solution\n\nfunc Solve() error {\n\treturn nil\n}", oneLine(prompt))
	case "javascript", "typescript":
		code = fmt.Sprintf("// %s\nfunction solve() {\n  return null;\n}", oneLine(prompt))
	case "java":
		code = fmt.Sprintf("// %s\npublic final class Solution {\n    public void solve() {\n    }\n}", oneLine(prompt))
	default:
		language = strings.ToLower(language)
		code = fmt.Sprintf("# %s\ndef solve():\n    pass", oneLine(prompt))
	}

	return map[string]any{
		"code":     code,
		"language": strings.ToLower(language),
		"notes":    "Generated by the scripted backend.",
	}, nil
}

func (b *ScriptedBackend) optimize(payload map[string]any) (map[string]any, error) {
	code, _ := payload["code"].(string)
	if code == "" {
		return nil, fmt.Errorf("scripted backend: optimize requires code")
	}
	language, _ := payload["language"].(string)
	if language == "" {
		language = "python"
	}
	target, _ := payload["target"].(string)
	if target == "" {
		target = "performance"
	}

	marker := "#"
	switch strings.ToLower(language) {
	case "go", "javascript", "typescript", "java", "c", "cpp", "rust":
		marker = "//"
	}

	optimized := fmt.Sprintf("%s optimized for %s\n%s", marker, target, code)
	return map[string]any{
		"code":     optimized,
		"language": strings.ToLower(language),
		"notes":    fmt.Sprintf("Rewrote for %s without behavior changes.", target),
	}, nil
}

func oneLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
