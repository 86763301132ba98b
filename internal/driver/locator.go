package driver

import (
	"fmt"
	"strings"
)

// Kind is the strategy a Locator uses to match elements.
type Kind int

const (
	ByName Kind = iota + 1
	ByCSS
	ByXPath
)

func (k Kind) String() string {
	switch k {
	case ByName:
		return "name"
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	}
	return "unknown"
}

// Locator identifies zero or more elements on the live page. It is a value:
// comparable, and safe to use as a map key.
type Locator struct {
	Kind Kind
	Expr string
}

// Name matches elements by their name attribute.
func Name(name string) Locator { return Locator{Kind: ByName, Expr: name} }

// CSS matches elements by CSS selector.
func CSS(selector string) Locator { return Locator{Kind: ByCSS, Expr: selector} }

// XPath matches elements by XPath expression.
func XPath(expr string) Locator { return Locator{Kind: ByXPath, Expr: expr} }

func (l Locator) String() string { return l.Kind.String() + "=" + l.Expr }

// Playwright renders the locator as a playwright selector.
func (l Locator) Playwright() string {
	switch l.Kind {
	case ByName:
		return fmt.Sprintf("css=[name=%q]", l.Expr)
	case ByCSS:
		return "css=" + l.Expr
	default:
		return "xpath=" + l.Expr
	}
}

// Search renders the locator for DOM.performSearch, which accepts CSS
// selectors and XPath expressions alike.
func (l Locator) Search() string {
	if l.Kind == ByName {
		return fmt.Sprintf("[name=%q]", l.Expr)
	}
	return l.Expr
}

// Control selects what to match inside the container that follows a label.
type Control string

const (
	Input      Control = "//input"
	Textarea   Control = "//textarea"
	SelectText Control = "//div[contains(@class,'oxd-select-text')]"
	Icon       Control = "//i"
	AnyDiv     Control = "//div"
	Container  Control = ""
)

// ForLabel finds the control associated with a human-readable caption: the
// label's parent is followed by a sibling container holding the control.
func ForLabel(label string, c Control) Locator {
	return XPath("//label[text()=" + XPathLiteral(label) + "]/../following-sibling::div" + string(c))
}

// ForLabelContaining is ForLabel with substring matching on the caption.
func ForLabelContaining(label string, c Control) Locator {
	return XPath("//label[contains(., " + XPathLiteral(label) + ")]/../following-sibling::div" + string(c))
}

// TagWithText matches <tag> elements whose own text equals text.
func TagWithText(tag, text string) Locator {
	return XPath("//" + tag + "[text()=" + XPathLiteral(text) + "]")
}

// TagContainingText matches <tag> elements whose own text contains text.
func TagContainingText(tag, text string) Locator {
	return XPath("//" + tag + "[contains(text()," + XPathLiteral(text) + ")]")
}

// TagContaining matches <tag> elements whose string value contains text,
// descendants included.
func TagContaining(tag, text string) Locator {
	return XPath("//" + tag + "[contains(., " + XPathLiteral(text) + ")]")
}

// Button matches buttons whose visible text contains text.
func Button(text string) Locator { return TagContaining("button", text) }

// XPathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so text holding both quote kinds is built with concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	args := make([]string, 0, 2*len(parts)-1)
	for i, p := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if p != "" {
			args = append(args, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}
