// Package menu holds the portfolio's panel tree: every panel identifier with
// its Markdown text and inline keyboard.
package menu

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/m3rciful/folio/core/logger"
)

// Reserved panel identifiers.
const (
	Home        = "home"
	Back        = "back"
	AboutMe     = "about_me"
	Jobs        = "jobs"
	Skills      = "skills"
	SocialMedia = "social_media"
)

const (
	labelAboutMe     = "About me"
	labelJobs        = "Jobs"
	labelSocialMedia = "Social Media"
	labelSkills      = "Skills"
	labelBack        = "Back"
)

// ErrNotFound is returned by Resolve for tokens that name no panel.
var ErrNotFound = errors.New("menu: entry not found")

var reserved = map[string]struct{}{
	Home: {}, Back: {}, AboutMe: {}, Jobs: {}, Skills: {}, SocialMedia: {},
}

// Registry is the immutable panel tree. It is safe for concurrent use.
type Registry struct {
	entries map[string]Entry
	aliases map[string]string
	content Content
}

// Build constructs and validates the panel tree from content. All problems
// found are reported together.
func Build(content Content) (*Registry, error) {
	content = content.WithDefaults()
	r := &Registry{
		entries: make(map[string]Entry),
		aliases: map[string]string{Back: Home},
		content: content,
	}
	var errs []error

	jobs, jobErrs := itemIDs("jobs", content.Jobs)
	skills, skillErrs := itemIDs("skills", content.Skills)
	errs = append(errs, jobErrs...)
	errs = append(errs, skillErrs...)

	back := Button{Label: labelBack, Action: Callback(Back)}
	backRow := [][]Button{{back}}

	text := func(id string) string {
		t, ok := content.Texts[id]
		if !ok || strings.TrimSpace(t) == "" {
			errs = append(errs, fmt.Errorf("menu: missing text for %q", id))
		}
		return t
	}

	r.add(Entry{
		ID:   Home,
		Text: text(Home),
		Keyboard: [][]Button{
			{{labelAboutMe, Callback(AboutMe)}, {labelJobs, Callback(Jobs)}},
			{{labelSocialMedia, Callback(SocialMedia)}, {labelSkills, Callback(Skills)}},
			{{content.RepositoryLabel, OpenLink(content.RepositoryURL)}},
		},
	})
	r.add(Entry{ID: AboutMe, Text: text(AboutMe), Keyboard: backRow})

	social := make([][]Button, 0, len(content.Social)+1)
	for _, l := range content.Social {
		social = append(social, []Button{{l.Label, OpenLink(l.URL)}})
	}
	r.add(Entry{ID: SocialMedia, Text: text(SocialMedia), Keyboard: append(social, []Button{back})})

	for _, group := range []struct {
		id    string
		items []Item
	}{{Jobs, jobs}, {Skills, skills}} {
		buttons := make([]Button, 0, len(group.items)+1)
		for _, it := range group.items {
			buttons = append(buttons, Button{it.Label, Callback(it.ID)})
			if _, dup := r.entries[it.ID]; dup {
				errs = append(errs, fmt.Errorf("menu: duplicate identifier %q", it.ID))
				continue
			}
			r.add(Entry{ID: it.ID, Text: text(it.ID), Keyboard: backRow})
		}
		buttons = append(buttons, back)
		r.add(Entry{ID: group.id, Text: text(group.id), Keyboard: chunk(buttons, 2)})
	}

	errs = append(errs, r.indexLabels()...)
	errs = append(errs, r.validate()...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	logger.Menu.Info("menu built",
		slog.String("event", "menu.build"),
		slog.Int("count", len(r.entries)),
		slog.Int("aliases", len(r.aliases)),
	)
	return r, nil
}

func (r *Registry) add(e Entry) {
	if _, exists := r.entries[e.ID]; !exists {
		r.entries[e.ID] = e
	}
}

// itemIDs fills missing ids from labels and rejects reserved ones.
func itemIDs(group string, items []Item) ([]Item, []error) {
	var errs []error
	out := make([]Item, 0, len(items))
	for i, it := range items {
		it.Label = strings.TrimSpace(it.Label)
		if it.Label == "" {
			errs = append(errs, fmt.Errorf("menu: %s[%d]: empty label", group, i))
			continue
		}
		if it.ID == "" {
			it.ID = it.Label
		}
		it.ID = Normalize(it.ID)
		if _, ok := reserved[it.ID]; ok {
			errs = append(errs, fmt.Errorf("menu: %s[%d]: identifier %q is reserved", group, i, it.ID))
			continue
		}
		out = append(out, it)
	}
	return out, errs
}

// indexLabels lets a normalized button label stand in for its target, so
// "About me" resolves like "about_me".
func (r *Registry) indexLabels() []error {
	var errs []error
	for _, e := range r.entries {
		for _, b := range e.Buttons() {
			if b.Action.IsLink() {
				continue
			}
			alias := Normalize(b.Label)
			if alias == "" || alias == b.Action.Target {
				continue
			}
			if _, isID := r.entries[alias]; isID {
				if alias != r.canonical(b.Action.Target) {
					errs = append(errs, fmt.Errorf("menu: label %q collides with identifier %q", b.Label, alias))
				}
				continue
			}
			if prev, ok := r.aliases[alias]; ok && prev != r.canonical(b.Action.Target) {
				errs = append(errs, fmt.Errorf("menu: label %q points to both %q and %q", b.Label, prev, b.Action.Target))
				continue
			}
			r.aliases[alias] = r.canonical(b.Action.Target)
		}
	}
	return errs
}

func (r *Registry) canonical(id string) string {
	if target, ok := r.aliases[id]; ok {
		return target
	}
	return id
}

func (r *Registry) validate() []error {
	var errs []error
	for _, id := range r.IDs() {
		for _, b := range r.entries[id].Buttons() {
			if b.Action.IsLink() {
				if err := validateURL(b.Action.URL); err != nil {
					errs = append(errs, fmt.Errorf("menu: %s: button %q: %w", id, b.Label, err))
				}
				continue
			}
			if _, ok := r.entries[r.canonical(b.Action.Target)]; !ok {
				errs = append(errs, fmt.Errorf("menu: %s: button %q points to unknown panel %q", id, b.Label, b.Action.Target))
			}
		}
	}
	return errs
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q must be absolute http(s)", raw)
	}
	return nil
}

func chunk(buttons []Button, n int) [][]Button {
	rows := make([][]Button, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		rows = append(rows, buttons[i:min(i+n, len(buttons))])
	}
	return rows
}

// Resolve returns the panel named by token. Tokens are normalized first, so
// "BACK", "back" and "Back" resolve alike.
func (r *Registry) Resolve(token string) (Entry, error) {
	id := r.canonical(Normalize(token))
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, token)
}

// IDs returns the defined panel identifiers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Content returns the content the registry was built from, defaults applied.
func (r *Registry) Content() Content { return r.content }
