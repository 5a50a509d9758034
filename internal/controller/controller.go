package controller

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"

	"github.com/hammamikhairi/foodvision/internal/conversation"
	"github.com/hammamikhairi/foodvision/internal/dom"
	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/lifecycle"
	"github.com/hammamikhairi/foodvision/internal/logger"
	"github.com/hammamikhairi/foodvision/internal/view"
)

// Surface paints documents and shows blocking alerts. display.UI
// implements it.
type Surface interface {
	Present(snap dom.Snapshot)
	Alert(message string)
}

// Option configures the controller.
type Option func(*Controller)

// WithMachine replaces the default keyword-driven transition machine.
func WithMachine(m *Machine) Option {
	return func(c *Controller) {
		c.machine = m
	}
}

// WithVoiceDefault sets whether voice is enabled on a freshly installed
// page.
func WithVoiceDefault(enabled bool) Option {
	return func(c *Controller) {
		c.voiceDefault = enabled
	}
}

// WithStartPath sets the page loaded by Run.
func WithStartPath(path string) Option {
	return func(c *Controller) {
		c.startPath = path
	}
}

// WithQueueSize sets the event queue capacity.
func WithQueueSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.queue = n
		}
	}
}

// Controller runs the interaction loop. One goroutine, the one inside
// Run, owns the document and the session; everything else posts to it.
type Controller struct {
	machine  *Machine
	bridge   domain.ServerBridge
	push     domain.PushChannel
	voice    domain.VoiceInput
	notifier domain.Notifier
	surface  Surface
	log      *logger.Logger

	voiceDefault bool
	startPath    string
	queue        int

	events  chan envelope
	stopped chan struct{}
	once    sync.Once

	// Owned by the loop.
	ctx       context.Context
	doc       *dom.Document
	session   domain.Session
	gen       uint64
	presented uint64
	shownDoc  *dom.Document
}

// envelope carries one loop input. gen is the page generation a completion
// was issued under; zero means "whatever page is current".
type envelope struct {
	gen uint64
	in  any
}

// Loop-internal inputs.
type (
	pageLoaded struct {
		path   string
		markup string
		err    error
	}
	clickInput struct {
		doc    uint64
		handle int
	}
	keyInput     struct{ key string }
	inspectInput struct {
		fn   func(doc *dom.Document, s domain.Session)
		done chan struct{}
	}
)

// New creates a controller. Nil push, voice and notifier are allowed.
func New(bridge domain.ServerBridge, push domain.PushChannel, voice domain.VoiceInput,
	notifier domain.Notifier, surface Surface, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		bridge:    bridge,
		push:      push,
		voice:     voice,
		notifier:  notifier,
		surface:   surface,
		log:       log,
		startPath: HomePath,
		queue:     64,
		stopped:   make(chan struct{}),
		doc:       dom.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.machine == nil {
		c.machine = NewMachine(defaultParser(log))
	}
	c.events = make(chan envelope, c.queue)
	c.session = domain.NewSession(domain.PhaseNone, c.voiceDefault)
	c.session.Stage = domain.StageLeaving
	return c
}

// ── Inputs ───────────────────────────────────────────────────────

// Post queues a domain event for the current page. It is safe to call from
// any goroutine; after Run returns it is a no-op.
func (c *Controller) Post(ev domain.Event) {
	c.enqueue(envelope{in: ev})
}

// Click delivers a click to the element with the given handle. doc is the
// serial of the snapshot the click was made on; clicks on a page that has
// since been replaced are dropped.
func (c *Controller) Click(doc uint64, handle int) {
	c.enqueue(envelope{in: clickInput{doc: doc, handle: handle}})
}

// Key delivers a key press to the current document.
func (c *Controller) Key(key string) {
	c.enqueue(envelope{in: keyInput{key: key}})
}

// Say feeds typed text through the same path as recognised speech.
func (c *Controller) Say(text string) {
	c.Post(domain.UtteranceHeard{Text: text})
}

// Inspect runs fn on the loop goroutine and waits for it. fn must not
// keep the document.
func (c *Controller) Inspect(fn func(doc *dom.Document, s domain.Session)) {
	done := make(chan struct{})
	if !c.enqueue(envelope{in: inspectInput{fn: fn, done: done}}) {
		return
	}
	select {
	case <-done:
	case <-c.stopped:
	}
}

func (c *Controller) enqueue(env envelope) bool {
	select {
	case c.events <- env:
		return true
	case <-c.stopped:
		return false
	}
}

// ── Loop ─────────────────────────────────────────────────────────

// Run loads the start page and processes events until ctx is done. Voice
// recognition is released on return.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer c.once.Do(func() { close(c.stopped) })

	c.listen(ctx)
	c.navigate(c.startPath)
	c.present()

	for {
		select {
		case <-ctx.Done():
			if c.voice != nil {
				c.voice.Release()
			}
			c.log.Info("controller stopped")
			return ctx.Err()
		case env := <-c.events:
			c.handle(env)
			c.present()
		}
	}
}

// listen forwards push and voice input into the loop.
func (c *Controller) listen(ctx context.Context) {
	if c.push != nil {
		c.push.OnNavigationCommand(func(cmd domain.NavigationCommand) {
			c.log.Info("navigation command %q", cmd.Command)
			c.Post(domain.NavigationReceived{Command: cmd})
		})
		c.push.OnDebugTrace(func(msg string) {
			c.log.Debug("server trace: %s", msg)
		})
	}
	if c.voice != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case text, ok := <-c.voice.Utterances():
					if !ok {
						return
					}
					c.Post(domain.UtteranceHeard{Text: text})
				}
			}
		}()
	}
}

func (c *Controller) handle(env envelope) {
	if env.gen != 0 && env.gen != c.gen {
		c.log.Debug("dropping stale %T from generation %d (now %d)", env.in, env.gen, c.gen)
		return
	}
	switch in := env.in.(type) {
	case pageLoaded:
		if in.err != nil {
			c.log.Warn("loading %s: %v", in.path, in.err)
			c.install(errorPage(in.path, in.err))
			return
		}
		c.install(in.markup)
	case clickInput:
		if in.doc != c.doc.Serial() {
			c.log.Debug("click on replaced page %d dropped", in.doc)
			return
		}
		el := c.doc.ElementByHandle(in.handle)
		if el == nil {
			c.log.Debug("click on element %d not in current page", in.handle)
			return
		}
		el.Dispatch("click")
	case keyInput:
		c.doc.DispatchKey(in.key)
	case inspectInput:
		in.fn(c.doc, c.session)
		close(in.done)
	case domain.Event:
		c.apply(in)
	}
}

// apply runs one event through the machine and carries out its effects.
func (c *Controller) apply(ev domain.Event) {
	prev := c.session.Stage
	next, effects := c.machine.Transition(c.session, ev)
	c.session = next
	if len(effects) > 0 || prev != next.Stage {
		c.log.Debug("[%s] %s: %s -> %s (%d effects)", short(next.ID), domain.EventName(ev), prev, next.Stage, len(effects))
	}
	for _, e := range effects {
		c.execute(e)
	}
}

func (c *Controller) execute(e Effect) {
	gen := c.gen
	switch e := e.(type) {
	case ShowLoading:
		view.Loading(c.doc, e.Visible)
	case IssueCapture:
		go func() {
			r, err := c.bridge.Capture(c.ctx)
			if err != nil {
				c.complete(gen, domain.CaptureFailed{Err: err})
				return
			}
			c.complete(gen, domain.CaptureSucceeded{Result: r})
		}()
	case RenderResults:
		view.Results(c.doc, e.Result)
	case RenderSuggestions:
		view.Suggestions(c.doc, e.Dishes, func(rank int) {
			c.apply(domain.DishSelected{Rank: rank})
		})
	case RenderError:
		view.ErrorBanner(c.doc, e.Message, func() {
			c.apply(domain.ErrorDismissed{})
		})
	case StopVoice:
		if c.voice == nil {
			return
		}
		if e.Release {
			c.voice.Release()
		} else {
			c.voice.Stop()
		}
	case StartVoice:
		if c.voice != nil && c.voice.Available() {
			c.voice.Start()
		}
	case RenderVoiceToggle:
		view.VoiceToggle(c.doc, c.session.VoiceEnabled, c.voice != nil && c.voice.Available())
	case RenderToast:
		view.VoiceToast(c.doc, e.Speaking)
	case RequestRecipe:
		go func() {
			markup, err := c.bridge.SelectDish(c.ctx, e.Rank)
			if err != nil {
				c.complete(gen, domain.RecipeFailed{Err: err})
				return
			}
			c.complete(gen, domain.RecipeLoaded{Markup: markup})
		}()
	case InstallPage:
		c.install(e.Markup)
	case PostContinue:
		go func() {
			err := c.bridge.ContinueSession(c.ctx, e.Choice)
			if err != nil {
				c.log.Warn("continue %q: %v", e.Choice, err)
			}
			c.complete(gen, domain.ContinueSettled{Err: err})
		}()
	case Navigate:
		c.navigate(e.Path)
	case Alert:
		if c.surface != nil {
			c.surface.Alert(e.Message)
		}
	case EmitVoiceCommand:
		if c.push == nil {
			return
		}
		go func() {
			if err := c.push.EmitVoiceCommand(c.ctx, e.Text); err != nil && !errors.Is(err, domain.ErrNoPushChannel) {
				c.log.Warn("emitting voice command: %v", err)
			}
		}()
	case Announce:
		c.announce(e)
	default:
		c.log.Warn("unhandled effect %s", EffectName(e))
	}
}

// complete queues the outcome of work issued under gen. in is either a
// domain.Event or a loop-internal input such as pageLoaded.
func (c *Controller) complete(gen uint64, in any) {
	c.enqueue(envelope{gen: gen, in: in})
}

func (c *Controller) announce(a Announce) {
	if c.notifier == nil || a.Text == "" {
		return
	}
	var err error
	if a.Urgent {
		err = c.notifier.NotifyUrgent(c.ctx, a.Text)
	} else {
		err = c.notifier.Notify(c.ctx, a.Text)
	}
	if err != nil {
		c.log.Warn("notify: %v", err)
	}
}

// ── Pages ────────────────────────────────────────────────────────

// navigate abandons the current page and fetches path. In-flight requests
// are not cancelled; their completions carry an old generation.
func (c *Controller) navigate(path string) {
	c.gen++
	gen := c.gen
	c.session.Stage = domain.StageLeaving
	c.log.Info("navigating to %s", path)
	go func() {
		markup, err := c.bridge.FetchPage(c.ctx, path)
		c.complete(gen, pageLoaded{path: path, markup: markup, err: err})
	}()
}

// install replaces the document and the session, then re-arms the page.
func (c *Controller) install(markup string) {
	c.gen++
	doc, err := dom.ParseString(markup)
	if err != nil {
		c.log.Error("parsing page: %v", err)
		doc, _ = dom.ParseString(errorPage("", err))
	}
	phase := domain.PhaseFromString(doc.Page())
	c.doc = doc
	c.session = domain.NewSession(phase, c.voiceDefault)
	c.log.Info("[%s] installed %s page %q", short(c.session.ID), phase, doc.Title())

	available := c.voice != nil && c.voice.Available()
	lifecycle.Bootstrap(doc, c.session, lifecycle.Hooks{
		FollowLink:  func(href string) { c.apply(domain.LinkFollowed{Href: href}) },
		Capture:     func() { c.apply(domain.CaptureRequested{}) },
		ToggleVoice: func() { c.apply(domain.VoiceToggled{}) },
		Key:         func(key string) { c.apply(domain.KeyPressed{Key: key}) },
		Continue:    func(choice domain.Choice) { c.apply(domain.ContinueRequested{Choice: choice}) },
		StartVoice: func() {
			c.voice.Start()
		},
		VoiceAvailable: available,
	})
	if phase == domain.PhaseRecipe {
		c.announce(Announce{Text: conversation.LineRecipeReady()})
	}
}

// present repaints when the document changed since the last paint.
func (c *Controller) present() {
	if c.surface == nil || c.doc == nil {
		return
	}
	if c.doc == c.shownDoc && c.doc.Version() == c.presented {
		return
	}
	c.shownDoc = c.doc
	c.presented = c.doc.Version()
	c.surface.Present(c.doc.Snapshot())
}

// errorPage is shown when a page cannot be loaded. Its link retries home.
func errorPage(path string, err error) string {
	msg := domain.UserMessage(err)
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf(`<html><head><title>Error</title></head><body>
<h1>Could not load %s</h1>
<p>%s</p>
<a href="%s">Back to start</a>
</body></html>`, html.EscapeString(path), html.EscapeString(msg), HomePath)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
