package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLocatorRendering(t *testing.T) {
	tests := []struct {
		name       string
		loc        Locator
		playwright string
		search     string
		str        string
	}{
		{"name", Name("username"), `css=[name="username"]`, `[name="username"]`, "name=username"},
		{"css", CSS("div.oxd-table-card"), "css=div.oxd-table-card", "div.oxd-table-card", "css=div.oxd-table-card"},
		{"xpath", XPath("//button[@type='submit']"), "xpath=//button[@type='submit']", "//button[@type='submit']", "xpath=//button[@type='submit']"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.playwright, tt.loc.Playwright())
			assert.Equal(t, tt.search, tt.loc.Search())
			assert.Equal(t, tt.str, tt.loc.String())
		})
	}
}

func TestLocatorIsComparable(t *testing.T) {
	seen := map[Locator]int{}
	seen[ForLabel("Vacancy", SelectText)]++
	seen[ForLabel("Vacancy", SelectText)]++
	assert.Equal(t, 2, seen[ForLabel("Vacancy", SelectText)])
	assert.NotEqual(t, ForLabel("Vacancy", SelectText), ForLabelContaining("Vacancy", SelectText))
}

func TestForLabel(t *testing.T) {
	assert.Equal(t,
		"//label[text()='Email']/../following-sibling::div//input",
		ForLabel("Email", Input).Expr)
	assert.Equal(t,
		"//label[text()='Job Title']/../following-sibling::div//div[contains(@class,'oxd-select-text')]",
		ForLabel("Job Title", SelectText).Expr)
	assert.Equal(t,
		"//label[text()='Date of Application']/../following-sibling::div",
		ForLabel("Date of Application", Container).Expr)
	assert.Equal(t,
		"//label[contains(., 'Consent')]/../following-sibling::div//i",
		ForLabelContaining("Consent", Icon).Expr)
}

func TestTextLocators(t *testing.T) {
	assert.Equal(t, "//span[text()='Candidates']", TagWithText("span", "Candidates").Expr)
	assert.Equal(t, "//a[contains(text(),'Recruitment')]", TagContainingText("a", "Recruitment").Expr)
	assert.Equal(t, "//button[contains(., ' Search ')]", Button(" Search ").Expr)
	assert.Equal(t, ByXPath, Button("Save").Kind)
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", XPathLiteral("plain"))
	assert.Equal(t, `"O'Neil"`, XPathLiteral("O'Neil"))
	assert.Equal(t, `'say "hi"'`, XPathLiteral(`say "hi"`))
	assert.Equal(t, `concat('it', "'", 's "x"')`, XPathLiteral(`it's "x"`))
	assert.Equal(t, `concat("'", 'a"', "'")`, XPathLiteral(`'a"'`))
}

// evalLiteral evaluates the subset of XPath that XPathLiteral produces.
func evalLiteral(t *rapid.T, expr string) string {
	if strings.HasPrefix(expr, "concat(") {
		require.True(t, strings.HasSuffix(expr, ")"))
		body := strings.TrimSuffix(strings.TrimPrefix(expr, "concat("), ")")
		var sb strings.Builder
		for len(body) > 0 {
			q := body[0]
			end := strings.IndexByte(body[1:], q)
			require.GreaterOrEqual(t, end, 0, "unterminated literal in %q", expr)
			sb.WriteString(body[1 : end+1])
			body = strings.TrimPrefix(body[end+2:], ", ")
		}
		return sb.String()
	}
	require.GreaterOrEqual(t, len(expr), 2)
	q := expr[0]
	require.Contains(t, []byte{'\'', '"'}, q)
	require.Equal(t, q, expr[len(expr)-1])
	inner := expr[1 : len(expr)-1]
	require.NotContains(t, inner, string(q))
	return inner
}

func TestXPathLiteralRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-zA-Z0-9 '"_-]{0,24}`).Draw(t, "s")
		assert.Equal(t, s, evalLiteral(t, XPathLiteral(s)))
	})
}
