package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"colormaker/internal/channel"
	"colormaker/internal/logging"
	"colormaker/internal/mixer"
)

// InvalidValueNotice is shown when typed text is not a value in [0, 1].
const InvalidValueNotice = "Enter a value between 0 and 1"

const (
	defaultBarWidth = 32
	swatchWidth     = 14
	swatchHeight    = 3
)

// Options tunes the mixer view.
type Options struct {
	Step           float64
	CoarseStep     float64
	NoticeDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Step <= 0 {
		o.Step = 0.01
	}
	if o.CoarseStep <= 0 {
		o.CoarseStep = 0.1
	}
	if o.NoticeDuration <= 0 {
		o.NoticeDuration = 2 * time.Second
	}
	return o
}

// noticeExpiredMsg clears the notice it was scheduled for.
type noticeExpiredMsg struct{ seq int }

// MixerModel is the interactive mixer. It reads state from the store on
// every render and turns keys into store intents.
type MixerModel struct {
	store  *mixer.Store
	opts   Options
	styles Styles
	keys   KeyMap
	help   help.Model

	bars    [3]progress.Model
	input   textinput.Model
	focus   int
	editing bool

	notice    string
	noticeErr bool
	noticeSeq int

	width int
}

// NewMixerModel creates the mixer view over store.
func NewMixerModel(store *mixer.Store, opts Options) MixerModel {
	styles := DefaultStyles()

	var bars [3]progress.Model
	for i := range bars {
		bars[i] = progress.New(
			progress.WithSolidFill(string(BarColor(i))),
			progress.WithoutPercentage(),
			progress.WithWidth(defaultBarWidth),
		)
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 8
	ti.Width = 6

	return MixerModel{
		store:  store,
		opts:   opts.withDefaults(),
		styles: styles,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		bars:   bars,
		input:  ti,
		width:  80,
	}
}

// Init initializes the model.
func (m MixerModel) Init() tea.Cmd {
	return nil
}

// Focused returns the channel under the cursor.
func (m MixerModel) Focused() channel.ID {
	return channel.IDs[m.focus]
}

// Editing reports whether the value field has focus.
func (m MixerModel) Editing() bool {
	return m.editing
}

// Notice returns the transient message, if any.
func (m MixerModel) Notice() string {
	return m.notice
}

// Update handles messages.
func (m MixerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 30
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		for i := range m.bars {
			m.bars[i].Width = w
		}
		m.help.Width = msg.Width
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m MixerModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.Focused()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.focus = (m.focus + len(channel.IDs) - 1) % len(channel.IDs)

	case key.Matches(msg, m.keys.Down):
		m.focus = (m.focus + 1) % len(channel.IDs)

	case key.Matches(msg, m.keys.Dec):
		return m.nudge(id, -m.opts.Step)

	case key.Matches(msg, m.keys.Inc):
		return m.nudge(id, m.opts.Step)

	case key.Matches(msg, m.keys.DecCoarse):
		return m.nudge(id, -m.opts.CoarseStep)

	case key.Matches(msg, m.keys.IncCoarse):
		return m.nudge(id, m.opts.CoarseStep)

	case key.Matches(msg, m.keys.Toggle):
		enabled := !m.store.Snapshot().Get(id).Enabled
		if err := m.store.SetEnabled(id, enabled); err != nil {
			return m.showError(err.Error())
		}

	case key.Matches(msg, m.keys.Edit):
		c := m.store.Snapshot().Get(id)
		if !c.Enabled {
			return m.showNotice(fmt.Sprintf("%s is off", id.Title()))
		}
		m.editing = true
		m.input.Reset()
		m.input.Placeholder = channel.FormatValue(c.Value)
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Reset):
		m.store.Reset()
	}
	return m, nil
}

func (m MixerModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		text := m.input.Value()
		id := m.Focused()
		m.stopEditing()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		if err := m.store.SetValueText(id, text); err != nil {
			logging.UIDebug("rejected %q for %s: %v", text, id, err)
			if errors.Is(err, mixer.ErrInvalidInput) {
				return m.showError(InvalidValueNotice)
			}
			return m.showError(err.Error())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MixerModel) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.Reset()
}

// nudge moves a slider. Sliders of disabled channels do not move.
func (m MixerModel) nudge(id channel.ID, delta float64) (tea.Model, tea.Cmd) {
	c := m.store.Snapshot().Get(id)
	if !c.Enabled {
		return m.showNotice(fmt.Sprintf("%s is off", id.Title()))
	}
	next := channel.Clamp(math.Round((c.Value+delta)*1e6) / 1e6)
	if next == c.Value {
		return m, nil
	}
	if err := m.store.SetValue(id, next); err != nil {
		return m.showError(err.Error())
	}
	return m, nil
}

// showError is showNotice for rejected intents.
func (m MixerModel) showError(text string) (tea.Model, tea.Cmd) {
	m.noticeErr = true
	return m.setNotice(text)
}

func (m MixerModel) showNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeErr = false
	return m.setNotice(text)
}

func (m MixerModel) setNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return m, tea.Tick(m.opts.NoticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// View renders the mixer.
func (m MixerModel) View() string {
	state := m.store.Snapshot()

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("colormaker"))
	sb.WriteString("\n\n")

	for i, id := range channel.IDs {
		sb.WriteString(m.renderRow(i, id, state.Get(id)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	hex := state.Hex()
	swatch := m.styles.Swatch.Render(
		lipgloss.NewStyle().
			Background(lipgloss.Color(hex)).
			Width(swatchWidth).
			Height(swatchHeight).
			Render(""),
	)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, swatch, m.styles.Hex.Render(hex)))
	sb.WriteString("\n\n")

	if m.notice != "" {
		style := m.styles.Notice
		if m.noticeErr {
			style = m.styles.Error
		}
		sb.WriteString(style.Render(m.notice))
	}
	sb.WriteString("\n")

	if m.editing {
		sb.WriteString(m.styles.Footer.Render(m.help.ShortHelpView(m.keys.editHelp())))
	} else {
		sb.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	}
	return sb.String()
}

func (m MixerModel) renderRow(i int, id channel.ID, c channel.Channel) string {
	cursor := "  "
	label := m.styles.Label
	if i == m.focus {
		cursor = "▸ "
		label = m.styles.FocusedLabel
	}
	if !c.Enabled {
		label = m.styles.DisabledLabel
	}

	value := m.styles.Value.Render(channel.FormatValue(c.Value))
	if m.editing && i == m.focus {
		value = m.input.View()
	}

	state := m.styles.Muted.Render("[off]")
	if c.Enabled {
		state = "[on] "
	}

	return cursor + label.Render(id.Title()) + " " + m.bars[i].ViewAs(c.Value) + " " + value + " " + state
}
