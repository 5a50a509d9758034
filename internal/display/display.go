// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] paints the installed page in a scrollable pane with a key help
// line below it. Status lines are printed above the rendered area via
// Program.Println, so concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/foodvision/internal/dom"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the startup banner colour.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	subheadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Underline(true)

	focusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#18181b")).
			Background(lipgloss.Color("#fde68a"))

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#fca5a5")).
			Padding(0, 2)
)

// Input receives what the user does on the page. controller.Controller
// implements it.
type Input interface {
	Click(doc uint64, handle int)
	Key(key string)
	Say(text string)
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI], [UI.Bind], then [UI.Run] (blocking). Other goroutines may call
// [UI.Present], [UI.Alert] and [UI.Printf] once [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	input   Input
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. Bind an Input, then call Run() to start.
func NewUI() *UI {
	return &UI{
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Bind sets where clicks, keys and typed utterances go. It must be called
// before Run.
func (u *UI) Bind(input Input) { u.input = input }

// Messages.
type (
	snapshotMsg dom.Snapshot
	alertMsg    string
)

// Present replaces the painted page.
func (u *UI) Present(snap dom.Snapshot) {
	u.send(snapshotMsg(snap))
}

// Alert shows a modal that blocks page input until a key is pressed.
func (u *UI) Alert(message string) {
	u.send(alertMsg(message))
}

func (u *UI) send(msg tea.Msg) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(msg)
	}
}

// Println prints a line above the page. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints a status line above the page.
func (u *UI) Printf(format string, a ...interface{}) {
	u.Println(primaryStyle.Render("  " + fmt.Sprintf(format, a...)))
}

// PrintUrgent prints an error status line.
func (u *UI) PrintUrgent(format string, a ...interface{}) {
	u.Println(urgentStyle.Render("  " + fmt.Sprintf(format, a...)))
}

// PrintVoice echoes a recognised or typed utterance.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("  [voice] ") + primaryStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	m := newModel(u.input, u.readyCh, u.PrintVoice)
	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeLines   = 3 // title bar, help line, prompt
)

type model struct {
	input   Input
	readyCh chan struct{}
	echoFn  func(string)

	snap      dom.Snapshot
	page      page
	focus     int // index into page.clickable, -1 for none
	pane      viewport.Model
	spin      spinner.Model
	prompt    textinput.Model
	prompting bool
	alerts    []string
	width     int
}

func newModel(input Input, ready chan struct{}, echo func(string)) model {
	ti := textinput.New()
	// Plain-text prompt keeps the textinput width math correct.
	ti.Prompt = "say> "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 200
	ti.Width = defaultWidth - len(ti.Prompt)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return model{
		input:   input,
		readyCh: ready,
		echoFn:  echo,
		focus:   -1,
		pane:    viewport.New(defaultWidth, defaultHeight-chromeLines),
		spin:    sp,
		prompt:  ti,
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, signalReady(m.readyCh))
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if ch != nil {
			close(ch)
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.pane.Width = msg.Width
		m.pane.Height = max(msg.Height-chromeLines, 3)
		m.prompt.Width = max(msg.Width-len(m.prompt.Prompt), 10)
		m.repaint()
		return m, nil

	case snapshotMsg:
		m.install(dom.Snapshot(msg))
		return m, tea.SetWindowTitle(titleOf(m.snap))

	case alertMsg:
		m.alerts = append(m.alerts, string(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.repaint()
		return m, cmd

	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

func (m model) key(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// A modal swallows the key that dismisses it.
	if len(m.alerts) > 0 {
		m.alerts = m.alerts[1:]
		return m, nil
	}

	if m.prompting {
		switch k.Type {
		case tea.KeyEsc:
			m.closePrompt()
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.prompt.Value())
			m.closePrompt()
			if text == "" {
				return m, nil
			}
			input, echo := m.input, m.echoFn
			return m, func() tea.Msg {
				if echo != nil {
					echo(text)
				}
				input.Say(text)
				return nil
			}
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(k)
		return m, cmd
	}

	switch k.Type {
	case tea.KeyTab:
		m.moveFocus(1)
		return m, nil
	case tea.KeyShiftTab:
		m.moveFocus(-1)
		return m, nil
	case tea.KeyEnter:
		if m.focus < 0 || m.focus >= len(m.page.clickable) {
			return m, nil
		}
		doc, handle := m.snap.Doc, m.page.clickable[m.focus]
		return m, m.deliver(func(in Input) { in.Click(doc, handle) })
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(k)
		return m, cmd
	case tea.KeyEsc:
		return m, m.deliver(func(in Input) { in.Key("Escape") })
	case tea.KeyRunes:
		if len(k.Runes) == 1 && k.Runes[0] == '/' {
			m.prompting = true
			cmd := m.prompt.Focus()
			return m, cmd
		}
		key := string(k.Runes)
		return m, m.deliver(func(in Input) { in.Key(key) })
	}
	return m, nil
}

// deliver runs fn outside Update so a busy controller never stalls
// the UI.
func (m model) deliver(fn func(Input)) tea.Cmd {
	if m.input == nil {
		return nil
	}
	input := m.input
	return func() tea.Msg {
		fn(input)
		return nil
	}
}

func (m *model) closePrompt() {
	m.prompting = false
	m.prompt.Reset()
	m.prompt.Blur()
}

// install paints a new snapshot, keeping focus on the same element when
// the document is unchanged.
func (m *model) install(snap dom.Snapshot) {
	prev := -1
	if m.snap.Doc == snap.Doc && m.focus >= 0 && m.focus < len(m.page.clickable) {
		prev = m.page.clickable[m.focus]
	}
	if m.snap.Doc != snap.Doc {
		m.pane.GotoTop()
	}
	m.snap = snap
	m.focus = -1
	m.repaintWith(prev)
	for i, h := range m.page.clickable {
		if h == prev {
			m.focus = i
		}
	}
}

func (m *model) moveFocus(delta int) {
	n := len(m.page.clickable)
	if n == 0 {
		m.focus = -1
		return
	}
	switch {
	case m.focus < 0 && delta > 0:
		m.focus = 0
	case m.focus < 0:
		m.focus = n - 1
	default:
		m.focus = (m.focus + delta + n) % n
	}
	m.repaint()
}

func (m *model) repaint() {
	h := 0
	if m.focus >= 0 && m.focus < len(m.page.clickable) {
		h = m.page.clickable[m.focus]
	}
	m.repaintWith(h)
}

func (m *model) repaintWith(focusHandle int) {
	m.page = renderPage(m.snap, focusHandle, m.spin.View())
	m.pane.SetContent(m.page.text)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.titleBar())
	b.WriteByte('\n')

	if len(m.alerts) > 0 {
		box := modalStyle.Render(urgentStyle.Render(m.alerts[0]) + "\n\n" +
			secondaryStyle.Render("press any key"))
		b.WriteString(lipgloss.Place(m.pane.Width, m.pane.Height, lipgloss.Center, lipgloss.Center, box))
	} else {
		b.WriteString(m.pane.View())
	}
	b.WriteByte('\n')

	if m.prompting {
		b.WriteString(m.prompt.View())
	} else {
		b.WriteString(secondaryStyle.Render(helpLine))
	}
	return b.String()
}

const helpLine = "tab focus · enter click · / say · ↑↓ scroll · ctrl+c quit"

func (m model) titleBar() string {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	return barBg.Width(w).Render(" " + titleOf(m.snap))
}

func titleOf(s dom.Snapshot) string {
	t := s.Title
	if t == "" {
		t = "Food Vision"
	}
	if s.Page != "" {
		t += " · " + s.Page
	}
	return t
}
