// internal/tui/app.go
//
// The chat interface for patchmind. It uses bubbletea's Elm-style loop:
// user input becomes a message, Update produces new state, View renders it.
// Every turn is synchronous in-memory computation, so there are no
// commands in flight beyond the input loop itself.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voltlab/patchmind/internal/config"
	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/session"
)

const inputCharLimit = 280

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	engineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true)
	savedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// chatLine is one rendered row of the conversation.
type chatLine struct {
	speaker string
	text    string
	style   lipgloss.Style
}

// App is the bubbletea model: the whole UI state lives here.
type App struct {
	cfg     *config.Config
	session *session.Session

	input    textinput.Model
	chat     viewport.Model
	lines    []chatLine
	ready    bool
	width    int
	height   int
	saveNote string
}

// NewApp builds the chat UI around an existing session.
func NewApp(cfg *config.Config, sess *session.Session) *App {
	input := textinput.New()
	input.Placeholder = `Tell me what to change ("darker", "add reverb", "save this")`
	input.CharLimit = inputCharLimit
	input.Focus()

	app := &App{cfg: cfg, session: sess, input: input}
	app.pushEngineLine("Here's your patch. What would you like to change?")
	return app
}

// Init satisfies tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update routes key and resize events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sizeViewport()
		return a, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			return a, a.submit()
		}
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit runs one conversation turn through the session.
func (a *App) submit() tea.Cmd {
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return nil
	}
	a.input.Reset()
	a.lines = append(a.lines, chatLine{speaker: "you", text: text, style: userStyle})

	result := a.session.HandleTurn(text)
	style := engineStyle
	switch result.Kind {
	case session.KindImpossible, session.KindClarify, session.KindNothingToUndo:
		style = warnStyle
	case session.KindFailed:
		style = errStyle
	case session.KindSaved:
		style = savedStyle
	}
	a.lines = append(a.lines, chatLine{speaker: "patchmind", text: result.Message, style: style})

	if result.Kind == session.KindSaved && result.Save != nil {
		a.persistSavedPatch(result)
	}
	a.refreshChat()
	return nil
}

// persistSavedPatch is the caller-side half of the save contract: the
// engine decides, the front-end writes.
func (a *App) persistSavedPatch(result session.TurnResult) {
	path := filepath.Join(a.cfg.PatchesDir(), result.Patch.ID+".yaml")
	if err := patch.Write(path, result.Patch); err != nil {
		a.pushEngineLine(fmt.Sprintf("(couldn't write the patch file: %v)", err))
		return
	}
	a.saveNote = fmt.Sprintf("saved to %s", path)
}

func (a *App) pushEngineLine(text string) {
	a.lines = append(a.lines, chatLine{speaker: "patchmind", text: text, style: engineStyle})
	a.refreshChat()
}

func (a *App) sizeViewport() {
	chatWidth := a.chatWidth()
	chatHeight := a.height - 5
	if chatHeight < 3 {
		chatHeight = 3
	}
	if !a.ready {
		a.chat = viewport.New(chatWidth, chatHeight)
		a.ready = true
	} else {
		a.chat.Width = chatWidth
		a.chat.Height = chatHeight
	}
	a.input.Width = chatWidth - 4
	a.refreshChat()
}

func (a *App) chatWidth() int {
	// Patch pane takes the right third on wide terminals.
	if a.width >= 100 {
		return a.width * 2 / 3
	}
	return a.width
}

func (a *App) refreshChat() {
	if !a.ready {
		return
	}
	var b strings.Builder
	for _, line := range a.lines {
		b.WriteString(line.style.Render(fmt.Sprintf("%s: ", line.speaker)))
		b.WriteString(wrapText(line.text, a.chat.Width-2))
		b.WriteString("\n")
	}
	a.chat.SetContent(b.String())
	a.chat.GotoBottom()
}

// View renders the chat next to the patch pane.
func (a *App) View() string {
	if !a.ready {
		return "loading..."
	}
	title := titleStyle.Render("patchmind — refine your patch")
	status := statusStyle.Render(fmt.Sprintf("%d refinement(s) · %d snapshot(s) · esc to quit",
		a.session.RefinementCount(), a.session.History().Len()))
	if a.saveNote != "" {
		status += "  " + savedStyle.Render(a.saveNote)
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.chat.View(),
		a.input.View(),
		status,
	)
	if a.width < 100 {
		return left
	}
	paneWidth := a.width - a.chatWidth() - 4
	pane := paneStyle.Width(paneWidth).Render(RenderPatch(a.session.Current()))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, pane)
}

// wrapText is a dumb word wrapper; lipgloss handles styling, not reflow.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n  ")
				lineLen = 2
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
