package menu

// Item is one job or skill button. ID defaults to the normalized label.
type Item struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Link is one URL button on the social media panel.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Content is the display material the menu tree is built from.
type Content struct {
	// InlineTitle is the title of the inline-query article.
	InlineTitle     string `yaml:"inline_title"`
	RepositoryLabel string `yaml:"repository_label"`
	RepositoryURL   string `yaml:"repository_url"`

	Social []Link `yaml:"social"`
	Jobs   []Item `yaml:"jobs"`
	Skills []Item `yaml:"skills"`

	// Texts maps panel identifiers to Telegram Markdown bodies.
	Texts map[string]string `yaml:"texts"`
}

const (
	DefaultInlineTitle     = "What info do you need?"
	DefaultRepositoryLabel = "Bot Repository"
)

// WithDefaults fills optional fields.
func (c Content) WithDefaults() Content {
	if c.InlineTitle == "" {
		c.InlineTitle = DefaultInlineTitle
	}
	if c.RepositoryLabel == "" {
		c.RepositoryLabel = DefaultRepositoryLabel
	}
	return c
}
