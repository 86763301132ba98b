package driver

// Both engines must satisfy the boundary interfaces.
var (
	_ Driver  = (*playwrightDriver)(nil)
	_ Element = (*playwrightElement)(nil)
	_ Driver  = (*chromedpDriver)(nil)
	_ Element = (*chromedpElement)(nil)
)
