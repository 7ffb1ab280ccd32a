// Package tui implements the interactive analyst chat. Questions are
// dispatched asynchronously and each answer is annotated with the tier that
// served it, the complexity score, and any fallback taken.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// Dispatcher is the slice of the dispatch API the chat needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, opts *models.Overrides) (*models.Outcome, error)
}

// answerMsg carries one completed dispatch back into the update loop.
type answerMsg struct {
	outcome *models.Outcome
	err     error
}

// exchange is one question/answer pair in the transcript.
type exchange struct {
	question string
	answer   string
	meta     string
	failed   bool
}

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Chat is the tea.Model for the analyst chat session.
type Chat struct {
	dispatcher Dispatcher
	input      *InputField
	viewport   viewport.Model
	spinner    spinner.Model

	// ctx bounds every dispatch issued from this session; cancel fires on
	// quit so an in-flight cascade does not outlive the program.
	ctx    context.Context
	cancel context.CancelFunc

	history []exchange
	busy    bool
	width   int
	height  int
	ready   bool
	quit    bool
}

// NewChat creates a chat over the given dispatcher.
func NewChat(d Dispatcher) *Chat {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	ctx, cancel := context.WithCancel(context.Background())
	return &Chat{
		dispatcher: d,
		input:      NewInputField(),
		spinner:    sp,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return c.input.Focus()
}

// Update implements tea.Model.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			c.quit = true
			c.cancel()
			return c, tea.Quit
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		default:
			if c.busy {
				return c, nil
			}
			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			return c, cmd
		}

	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.resize()
		return c, nil

	case QuestionSubmittedMsg:
		c.busy = true
		c.history = append(c.history, exchange{question: msg.Text})
		c.refreshTranscript()
		return c, tea.Batch(c.spinner.Tick, c.ask(msg.Text))

	case answerMsg:
		c.busy = false
		c.recordAnswer(msg)
		c.refreshTranscript()
		return c, nil

	case spinner.TickMsg:
		if !c.busy {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	}

	return c, nil
}

// ask dispatches the question off the update loop.
func (c *Chat) ask(text string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := c.dispatcher.Dispatch(c.ctx, text, &models.Overrides{})
		return answerMsg{outcome: outcome, err: err}
	}
}

// recordAnswer fills in the pending exchange from a dispatch result.
func (c *Chat) recordAnswer(msg answerMsg) {
	if len(c.history) == 0 {
		return
	}
	last := &c.history[len(c.history)-1]

	if msg.err != nil {
		last.answer = fmt.Sprintf("error: %v", msg.err)
		last.failed = true
		if msg.outcome != nil {
			last.meta = outcomeMeta(msg.outcome)
		}
		return
	}
	last.answer = msg.outcome.Text
	last.meta = outcomeMeta(msg.outcome)
}

// outcomeMeta formats the per-answer annotation line.
func outcomeMeta(o *models.Outcome) string {
	meta := fmt.Sprintf("tier %s, score %d, %s", o.TierUsed, o.ComplexityScore, o.Elapsed.Round(10*time.Millisecond))
	if o.UsedFallback {
		meta += fmt.Sprintf(", fallback %s", o.FallbackStrategy)
	}
	return meta
}

// Transcript renders the conversation body.
func (c *Chat) Transcript() string {
	var b strings.Builder
	for _, ex := range c.history {
		b.WriteString(questionStyle.Render("you: ") + ex.question + "\n")
		switch {
		case ex.answer == "":
			b.WriteString(c.spinner.View() + " thinking...\n")
		case ex.failed:
			b.WriteString(errorStyle.Render(ex.answer) + "\n")
		default:
			b.WriteString(ex.answer + "\n")
		}
		if ex.meta != "" {
			b.WriteString(metaStyle.Render("["+ex.meta+"]") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Chat) refreshTranscript() {
	c.viewport.SetContent(c.Transcript())
	c.viewport.GotoBottom()
}

func (c *Chat) resize() {
	inputHeight := 3
	headerHeight := 2
	vpHeight := c.height - inputHeight - headerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !c.ready {
		c.viewport = viewport.New(c.width, vpHeight)
		c.ready = true
	} else {
		c.viewport.Width = c.width
		c.viewport.Height = vpHeight
	}
	c.input.SetWidth(c.width)
	c.refreshTranscript()
}

// View implements tea.Model.
func (c *Chat) View() string {
	if c.quit {
		return "Session ended.\n"
	}
	header := headerStyle.Render("fundscribe") + metaStyle.Render("  ask about the book, or request a report")
	return lipgloss.JoinVertical(lipgloss.Left, header, c.viewport.View(), c.input.View())
}

// NewProgram creates the Bubbletea program for the chat session.
func NewProgram(d Dispatcher) *tea.Program {
	return tea.NewProgram(NewChat(d), tea.WithAltScreen())
}
