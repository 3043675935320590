package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/contentplane/aikit/core/parse"
	"github.com/contentplane/aikit/internal/utils"
)

// Summary is the structured result of Summarize. Missing sections come back
// as empty values, never as an error.
type Summary struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Speakers string   `json:"speakers"`
}

var (
	reTitle    = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	reKeywords = regexp.MustCompile(`(?s)<keywords>(.*?)</keywords>`)
	reSummary  = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	reSpeakers = regexp.MustCompile(`(?s)<speakers>(.*?)</speakers>`)
	reCommaSep = regexp.MustCompile(`\s*,\s*`)
)

const summarizeInstructions = `You are a language model tasked with extracting structured summaries for indexing, using clearly labeled XML-style tags.

Output **exactly these sections**:
1. <title> a title for the text, comfortably under 200 characters
2. <keywords> one line, 400 characters max
3. <summary> one paragraph, 512 characters max
4. <speakers> either names or "no names"

Inside the <keywords> section, output a **single line** with up to 50 comma-separated 1-word keywords or 2-word key phrases that would help someone find the text in an archive or search engine. Only include the most relevant and commonly searched terms, using synonyms or generalizations if needed.

Inside the <summary> section, write a single paragraph (less than 512 characters) summarizing the **core ideas** expressed in the text. Avoid run-on sentences and do not use multiple paragraphs. Ignore any promotional or advertising content. Do not refer to "this conversation", "the content", or the names of hosts or speakers directly.

Inside the <speakers> section, write either a comma-separated list of speaker names (if clearly identifiable in the text) or the exact string: no names. Do not guess.

Follow this format exactly, without variation. Example:

===
<title>
Generated title under 200 characters
</title>

<keywords>
keyword1, keyword2, keyword3, ...
</keywords>

<summary>
This is the 1-paragraph summary of the main points from the text.
</summary>

<speakers>
name1, name2
</speakers>
===

Now process the following text:

`

// Summarize asks the model for an XML-tag-delimited title, keyword line,
// summary paragraph and speaker list, and extracts each section. Temperature
// defaults to 0 and max tokens to 1000. Empty or whitespace-only input
// returns an empty Summary without invoking the model. A speakers value of
// "no names" (any case) normalizes to empty; missing tags normalize to empty
// values.
func Summarize(ctx context.Context, exec ModelExecutor, text string, opts Options) (Summary, error) {
	if strings.TrimSpace(text) == "" {
		return Summary{}, nil
	}

	if opts.Temperature == nil {
		opts.Temperature = Temp(0)
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1000
	}

	content, err := exec.ExecuteModel(ctx, summarizeInstructions+text, Inputs{}, opts)
	if err != nil {
		return Summary{}, err
	}

	// Strip code fences if hallucinated.
	content = utils.StripCodeFences(content)

	s := Summary{
		Title:   extractTag(reTitle, content),
		Summary: extractTag(reSummary, content),
	}

	if kw := extractTag(reKeywords, content); kw != "" {
		for _, k := range reCommaSep.Split(kw, -1) {
			if k = strings.TrimSpace(k); k != "" {
				s.Keywords = append(s.Keywords, k)
			}
		}
	}

	speakers := extractTag(reSpeakers, content)
	if !strings.EqualFold(speakers, "no names") {
		s.Speakers = speakers
	}

	return s, nil
}

// SummarizeHTML converts an HTML document to markdown and summarizes it.
// Content management callers frequently hold page HTML rather than plain
// text; markdown keeps the structure the model needs without the markup
// noise.
func SummarizeHTML(ctx context.Context, exec ModelExecutor, html string, opts Options) (Summary, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return Summary{}, fmt.Errorf("converting HTML input: %w", err)
	}
	return Summarize(ctx, exec, markdown, opts)
}

func extractTag(re *regexp.Regexp, content string) string {
	if m := re.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// KeywordsMode selects how aggressively Keywords expands its input.
type KeywordsMode string

const (
	// KeywordsInsert expands broadly: synonyms, variations, alternate
	// phrasings, related terms. Used when indexing new content.
	KeywordsInsert KeywordsMode = "insert"
	// KeywordsQuery expands narrowly and more literally, to improve recall
	// at query time without drifting off-topic.
	KeywordsQuery KeywordsMode = "query"
)

// Keywords expands a canonical keyword list into up to 1000 comma-separated
// search terms of at most two words. Query mode uses a strictly lower
// temperature (0.3) than insert mode (0.7). Output is lowercased and
// deduplicated, preserving first-seen order. Empty input returns nil without
// invoking the model.
func Keywords(ctx context.Context, exec ModelExecutor, keywords []string, mode KeywordsMode, opts Options) ([]string, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	modeDescription := "a wide variety of synonyms, variations, alternate phrasing, related terms, abbreviations, and common search terms"
	if mode == KeywordsQuery {
		modeDescription = "closely related synonyms and rephrasings"
	}

	prompt := fmt.Sprintf(`You are expanding canonical search keywords into useful query terms for a search engine, producing %s.

Here is the input:
%s

Please output up to 1000 comma-separated search terms that people might use when looking for this content.

Strict rules:
- Only output one line.
- Each term must be 1 or 2 words maximum. No more than 2 words.
- No special characters, punctuation, or formatting.
- No duplicates.
- Do NOT include full sentences.
- All terms must be highly relevant, not generic.
- Think of synonyms, rephrasings, subtopics, and variations.
- Imagine a smart autocomplete or tag system for searching.

Example output:
free talk, libertarian radio, bitcoin price, parking gender, bartering app, cryptocurrency tax, feminist activism

Now output the expanded keyword line:`, modeDescription, strings.Join(keywords, ", "))

	if opts.Temperature == nil {
		if mode == KeywordsQuery {
			opts.Temperature = Temp(0.3)
		} else {
			opts.Temperature = Temp(0.7)
		}
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2000
	}

	content, err := exec.ExecuteModel(ctx, prompt, Inputs{}, opts)
	if err != nil {
		return nil, err
	}

	content = utils.StripCodeFences(content)

	seen := make(map[string]bool)
	var expanded []string
	for _, term := range reCommaSep.Split(content, -1) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		expanded = append(expanded, term)
	}
	return expanded, nil
}

// Observation is a named, schema-constrained extraction target. PromptClause
// tells the model what to evaluate; FieldNames define the JSON skeleton it
// must fill, optionally seeded with Example values.
type Observation struct {
	PromptClause string
	FieldNames   []string
	Example      map[string]any
}

// Process evaluates all observations against the inputs in exactly one model
// call and returns the observation JSON keyed by observation name. An empty
// observations map resolves to an empty result immediately, with zero model
// calls. The model response is repaired if needed but must ultimately parse
// as a JSON object; anything else returns [ErrInvalidResponse].
func Process(ctx context.Context, exec ModelExecutor, inputs Inputs, observations map[string]Observation, interpolate map[string]string, opts Options) (map[string]any, error) {
	if len(observations) == 0 {
		return map[string]any{}, nil
	}

	clauses, schema := promptFromObservations(observations)
	if len(clauses) == 0 {
		return map[string]any{}, nil
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding observation schema: %w", err)
	}

	prompt := "You are an automated semantic processor.\n\n" +
		"Rules:\n" +
		"- Output MUST be valid JSON\n" +
		"- Do not include comments or prose\n" +
		"- Do not omit fields\n" +
		"- Use null when uncertain\n" +
		"- Arrays must respect stated limits\n" +
		"- Numeric values must be within stated ranges\n" +
		"- If uncertainty is high for any field, lower the confidence score accordingly\n\n" +
		"Inputs are referenced ONLY by the names provided in the text.\n" +
		"Do not infer meaning from order, index, or file type.\n\n" +
		"OBSERVATIONS:\n" + strings.Join(clauses, "\n") + "\n\n" +
		"Return ONLY valid JSON matching this schema exactly:\n" + string(schemaJSON)

	for key, value := range interpolate {
		prompt = strings.ReplaceAll(prompt, "{{"+key+"}}", value)
	}

	opts.ResponseFormat = FormatJSON

	response, err := exec.ExecuteModel(ctx, prompt, inputs, opts)
	if err != nil {
		return nil, err
	}

	data, err := parse.ParseObject(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return data, nil
}

// promptFromObservations builds the prompt clauses and the JSON skeleton the
// model must return. Observations missing a clause or field names are
// skipped.
func promptFromObservations(observations map[string]Observation) ([]string, map[string]map[string]any) {
	// Deterministic clause order regardless of map iteration.
	names := make([]string, 0, len(observations))
	for name := range observations {
		names = append(names, name)
	}
	sort.Strings(names)

	var clauses []string
	schema := make(map[string]map[string]any)

	for _, name := range names {
		o := observations[name]
		if o.PromptClause == "" || len(o.FieldNames) == 0 {
			continue
		}
		clauses = append(clauses, "- "+o.PromptClause)

		fields := make(map[string]any, len(o.FieldNames))
		for _, field := range o.FieldNames {
			if v, ok := o.Example[field]; ok {
				fields[field] = v
			} else {
				fields[field] = nil
			}
		}
		schema[name] = fields
	}

	return clauses, schema
}
