// Package selectors holds the ordered candidate queries for every logical
// UI target the scraper touches. Kognity's class names are generated, so
// each target carries several alternatives tried in order; the first query
// that yields a live element wins.
package selectors

import "fmt"

// Kind distinguishes CSS from XPath candidate queries.
type Kind int

const (
	KindCSS Kind = iota
	KindXPath
)

func (k Kind) String() string {
	if k == KindXPath {
		return "xpath"
	}
	return "css"
}

// Query is one candidate resolution query.
type Query struct {
	Kind Kind
	Expr string
}

func CSS(expr string) Query   { return Query{Kind: KindCSS, Expr: expr} }
func XPath(expr string) Query { return Query{Kind: KindXPath, Expr: expr} }

func (q Query) String() string { return fmt.Sprintf("%s:%s", q.Kind, q.Expr) }

// Logical target names. Keys into the Table.
const (
	EmailField        = "login.email_field"
	PasswordField     = "login.password_field"
	LoginButton       = "login.button"
	LoggedInIndicator = "dashboard.logged_in_indicator"
	ClassItems        = "dashboard.class_items"
	TocTopics         = "content.toc_topics"
	MainTopicButton   = "content.main_topic_button"
	SubtopicContainer = "content.subtopic_container"
	SubtopicHeader    = "content.subtopic_header"
	SectionLinks      = "content.section_links"
	NavMenuItems      = "content.nav_menu_items"
	CloseButton       = "content.close_button"
	ExpandControls    = "capture.expand_controls"
	RevealControls    = "capture.reveal_controls"
)

// Table maps a logical target to its ordered candidate queries.
type Table map[string][]Query

// Lookup returns the candidates for a target, nil when unknown.
func (t Table) Lookup(target string) []Query { return t[target] }

// Override replaces a target's candidates. Used for config-supplied CSS
// selector tables; overrides always take the whole list, never append.
func (t Table) Override(target string, queries []Query) {
	t[target] = queries
}

// TabQueries builds the candidate queries for a named top-level tab
// (overview, book, practice, assignments, insights). Text matching is
// lowercased in-XPath because tab labels vary in casing across subjects.
func TabQueries(tab string) []Query {
	lower := `translate(text(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz")`
	return []Query{
		XPath(fmt.Sprintf(`//a[contains(%s, %q)]`, lower, tab)),
		CSS(fmt.Sprintf(`a[href*=%q]`, tab)),
		XPath(fmt.Sprintf(`//nav//a[contains(%s, %q)]`, lower, tab)),
	}
}

// Default returns the built-in selector table.
func Default() Table {
	return Table{
		EmailField: {
			CSS(`input[type="email"]`),
			CSS(`input[name="email"]`),
			CSS(`input[placeholder*="email" i]`),
			XPath(`//input[@type="email"]`),
		},
		PasswordField: {
			CSS(`input[type="password"]`),
			CSS(`input[name="password"]`),
			XPath(`//input[@type="password"]`),
		},
		LoginButton: {
			CSS(`button[type="submit"]`),
			XPath(`//button[contains(text(), "Sign in")]`),
			XPath(`//button[contains(text(), "Log in")]`),
			XPath(`//button[contains(text(), "Continue")]`),
			XPath(`//input[@type="submit"]`),
		},
		LoggedInIndicator: {
			CSS(`[class*="UserMenu"]`),
			CSS(`[class*="user-menu"]`),
			XPath(`//div[contains(@class, "user")]`),
		},
		ClassItems: {
			// Kognity-specific class cards first, generic course cards after.
			CSS(`[class*="ClassCard"]`),
			CSS(`a[class*="ClassCard"]`),
			CSS(`.ClassCard-className`),
			XPath(`//a[contains(@class, "ClassCard")]`),
			CSS(`[class*="class-card"]`),
			CSS(`[class*="course-card"]`),
			XPath(`//div[contains(@class, "class")]//a`),
			XPath(`//div[contains(@class, "course")]//a`),
		},
		TocTopics: {
			CSS(`[class*="TableOfContentsTopics-listItem"]`),
			CSS(`.TableOfContentsTopics-listItem`),
		},
		MainTopicButton: {
			CSS(`button[class*="KogButtonLegacy"]`),
			XPath(`//button[contains(@class, "KogButtonLegacy")]`),
		},
		SubtopicContainer: {
			CSS(`[class*="SubjectOverviewSubtopic"]`),
		},
		SubtopicHeader: {
			CSS(`[class*="SubjectOverviewSubtopic-headerContent"]`),
		},
		SectionLinks: {
			CSS(`[lang="en"].list-style-none a`),
			CSS(`ul.list-style-none a`),
			CSS(`ol.list-style-none a`),
			CSS(`[class*="SubjectOverviewSubtopic"] a`),
		},
		NavMenuItems: {
			CSS(`[class*="NavbarCenterMenu-menuItem"]`),
		},
		CloseButton: {
			CSS(`[class*="BookRailToc-topicHeadlineCloseButton"]`),
		},
		ExpandControls: {
			CSS(`button[aria-expanded="false"]`),
			CSS(`[class*="collapsible"] button`),
			CSS(`[class*="Accordion"] button`),
			CSS(`details:not([open]) summary`),
		},
		RevealControls: {
			CSS(`button[class*="ShowAnswer"]`),
			CSS(`button[class*="show-answer"]`),
			XPath(`//button[contains(translate(text(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "show answer")]`),
			XPath(`//button[contains(translate(text(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "abcdefghijklmnopqrstuvwxyz"), "reveal")]`),
		},
	}
}
