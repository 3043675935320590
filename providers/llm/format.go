package llm

// FormatPrompt prepends strict output-format instructions to prompt when the
// options request JSON or schema-constrained output. No provider-native
// structured-output mode is assumed portable, so every adapter routes its
// prompt through this helper before dispatch.
func FormatPrompt(prompt string, opts Options) string {
	switch opts.ResponseFormat {
	case FormatJSONSchema:
		if opts.Schema != nil {
			return "You are a strict JSON generator.\n" +
				"Output MUST be valid JSON and MUST conform exactly to this JSON Schema:\n\n" +
				opts.Schema.Pretty() +
				"\n\nRules:\n" +
				"- Output JSON only\n" +
				"- Do not include prose, comments, or markdown\n" +
				"- Do not omit required fields\n" +
				"- Use null when a value is unknown\n\n" +
				prompt
		}
		fallthrough
	case FormatJSON:
		return "You are a strict JSON generator.\n" +
			"Output MUST be valid JSON.\n" +
			"Do not include prose, comments, or markdown\n\n" +
			prompt
	default:
		return prompt
	}
}
