// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Call records one outbound Send or Edit.
type Call struct {
	What any
	Opts []any
}

// Text returns What as a string, or "" when it is not text.
func (c Call) Text() string {
	s, _ := c.What.(string)
	return s
}

// SendOptions returns the first *tele.SendOptions passed with the call.
func (c Call) SendOptions() *tele.SendOptions {
	for _, o := range c.Opts {
		if so, ok := o.(*tele.SendOptions); ok {
			return so
		}
	}
	return nil
}

// Markup returns the reply markup passed with the call, if any.
func (c Call) Markup() *tele.ReplyMarkup {
	for _, o := range c.Opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		}
	}
	return nil
}

// Context implements the parts of tele.Context handlers in this module use.
// Calling any other method panics on the nil embedded interface.
type Context struct {
	tele.Context

	Upd tele.Update

	SendErr    error
	EditErr    error
	AnswerErr  error
	RespondErr error

	mu       sync.Mutex
	store    map[string]any
	sent     []Call
	edits    []Call
	responds []*tele.CallbackResponse
	answers  []*tele.QueryResponse
}

var _ tele.Context = (*Context)(nil)

// NewMessage returns a context for a private text message from userID.
func NewMessage(updateID int, userID int64, text string) *Context {
	user := &tele.User{ID: userID, Username: "tester"}
	return &Context{Upd: tele.Update{
		ID: updateID,
		Message: &tele.Message{
			ID:     updateID,
			Sender: user,
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		},
	}}
}

// NewCallback returns a context for a button press carrying data.
// Inline callbacks refer to an inline message and have no chat.
func NewCallback(updateID int, userID int64, data string, inline bool) *Context {
	user := &tele.User{ID: userID, Username: "tester"}
	cb := &tele.Callback{ID: "cb", Sender: user, Data: data}
	if inline {
		cb.MessageID = "inline-message"
	} else {
		cb.Message = &tele.Message{
			ID:   1,
			Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		}
	}
	return &Context{Upd: tele.Update{ID: updateID, Callback: cb}}
}

// NewQuery returns a context for an inline query.
func NewQuery(updateID int, userID int64, text string) *Context {
	user := &tele.User{ID: userID, Username: "tester"}
	return &Context{Upd: tele.Update{
		ID:    updateID,
		Query: &tele.Query{ID: "q", Sender: user, Text: text},
	}}
}

func (c *Context) Update() tele.Update      { return c.Upd }
func (c *Context) Message() *tele.Message   { return c.Upd.Message }
func (c *Context) Callback() *tele.Callback { return c.Upd.Callback }
func (c *Context) Query() *tele.Query       { return c.Upd.Query }

func (c *Context) Sender() *tele.User {
	switch {
	case c.Upd.Message != nil:
		return c.Upd.Message.Sender
	case c.Upd.Callback != nil:
		return c.Upd.Callback.Sender
	case c.Upd.Query != nil:
		return c.Upd.Query.Sender
	}
	return nil
}

func (c *Context) Chat() *tele.Chat {
	switch {
	case c.Upd.Message != nil:
		return c.Upd.Message.Chat
	case c.Upd.Callback != nil && c.Upd.Callback.Message != nil:
		return c.Upd.Callback.Message.Chat
	}
	return nil
}

func (c *Context) Recipient() tele.Recipient {
	if chat := c.Chat(); chat != nil {
		return chat
	}
	return c.Sender()
}

func (c *Context) Text() string {
	if c.Upd.Message != nil {
		return c.Upd.Message.Text
	}
	return ""
}

func (c *Context) Data() string {
	switch {
	case c.Upd.Callback != nil:
		return c.Upd.Callback.Data
	case c.Upd.Query != nil:
		return c.Upd.Query.Text
	}
	return ""
}

func (c *Context) Send(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, Call{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error { return c.Send(what, opts...) }

func (c *Context) Edit(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EditErr != nil {
		return c.EditErr
	}
	c.edits = append(c.edits, Call{What: what, Opts: opts})
	return nil
}

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var r *tele.CallbackResponse
	if len(resp) > 0 {
		r = resp[0]
	}
	c.responds = append(c.responds, r)
	return c.RespondErr
}

func (c *Context) Answer(resp *tele.QueryResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AnswerErr != nil {
		return c.AnswerErr
	}
	c.answers = append(c.answers, resp)
	return nil
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

// Sent returns a copy of recorded sends.
func (c *Context) Sent() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.sent...)
}

// Edits returns a copy of recorded edits.
func (c *Context) Edits() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.edits...)
}

// Responds returns recorded callback acknowledgements.
func (c *Context) Responds() []*tele.CallbackResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.CallbackResponse(nil), c.responds...)
}

// Answers returns recorded inline query answers.
func (c *Context) Answers() []*tele.QueryResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.QueryResponse(nil), c.answers...)
}
