package routing

import (
	"context"
	"regexp"
	"strings"
)

// PatternStrategy is the deterministic last tier: a fixed, ordered list of
// text matchers. Only the first matcher that fires is used, even when
// several would match. Matchers never propose a tool the catalog does not
// currently export.
type PatternStrategy struct {
	catalog  Catalog
	matchers []matcher
}

type matcher struct {
	tool  string
	match func(text string) (map[string]any, bool)
}

func NewPatternStrategy(catalog Catalog) *PatternStrategy {
	return &PatternStrategy{
		catalog: catalog,
		// Order is significant: arithmetic first, then time, then system.
		matchers: []matcher{
			{tool: "calculator", match: matchArithmetic},
			{tool: "time_now", match: matchTimeQuery},
			{tool: "system_info", match: matchSystemQuery},
		},
	}
}

func (s *PatternStrategy) Name() string { return "pattern" }

func (s *PatternStrategy) Route(_ context.Context, in Input) (Decision, bool) {
	text := strings.TrimSpace(in.UserText)
	if text == "" {
		return Decision{}, false
	}
	known := knownTools(in.schemas(s.catalog))
	for _, m := range s.matchers {
		if !known[m.tool] {
			continue
		}
		params, ok := m.match(text)
		if !ok {
			continue
		}
		return Decision{
			ShouldInvoke:   true,
			ToolName:       m.tool,
			Parameters:     params,
			StrategySource: s.Name(),
		}, true
	}
	return Decision{}, false
}

// ─── arithmetic ──────────────────────────────────────────────────────────────

// Binary expressions with ASCII operators, the × sign, or Korean operator
// words. Operands may be decimal.
var arithmeticPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+(?:\.\d+)?\s*[+*/×^%]\s*\d+(?:\.\d+)?`),
	regexp.MustCompile(`\d+(?:\.\d+)?\s+-\s+\d+(?:\.\d+)?`),
	regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:곱하기|더하기|빼기|나누기)\s*\d+(?:\.\d+)?`),
}

// koreanOperators normalizes Korean operator words to ASCII.
var koreanOperators = strings.NewReplacer(
	"곱하기", " * ",
	"더하기", " + ",
	"빼기", " - ",
	"나누기", " / ",
	"×", " * ",
)

func matchArithmetic(text string) (map[string]any, bool) {
	for _, re := range arithmeticPatterns {
		expr := re.FindString(text)
		if expr == "" {
			continue
		}
		expr = strings.Join(strings.Fields(koreanOperators.Replace(expr)), " ")
		return map[string]any{"expression": expr}, true
	}
	return nil, false
}

// ─── time ────────────────────────────────────────────────────────────────────

var timeKeywords = []string{"몇 시", "몇시", "시간", "지금 시각", "what time", "current time", "time now", "clock", "timezone"}

// cityAliases is the subset of timezone aliases worth spotting in free text.
// The clock tool resolves the alias to an IANA zone itself.
var cityAliases = []string{
	"서울", "seoul", "도쿄", "tokyo", "뉴욕", "new york", "런던", "london",
	"파리", "paris", "베를린", "berlin", "베이징", "beijing", "싱가포르", "singapore",
	"시드니", "sydney", "los angeles", "utc",
}

func matchTimeQuery(text string) (map[string]any, bool) {
	lower := strings.ToLower(text)
	if !containsAny(lower, timeKeywords) {
		return nil, false
	}
	params := map[string]any{}
	for _, city := range cityAliases {
		if strings.Contains(lower, city) {
			params["timezone"] = city
			break
		}
	}
	return params, true
}

// ─── system metrics ──────────────────────────────────────────────────────────

var systemKeywords = []string{"시스템", "cpu", "메모리", "memory", "disk", "hostname", "system info", "시스템 정보"}

func matchSystemQuery(text string) (map[string]any, bool) {
	lower := strings.ToLower(text)
	if !containsAny(lower, systemKeywords) {
		return nil, false
	}
	return map[string]any{"info_type": "all"}, true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
