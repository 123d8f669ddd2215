package tui

import (
	"strings"

	"webide-cli/internal/dialog"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func modalBodyWidth(width int) int {
	w := width - 12
	if w > 60 {
		w = 60
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Width(bodyW).
		Render(" " + title)
	body := lipgloss.NewStyle().
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Width(bodyW).
		Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Padding(0, 1).
		Render(header + "\n\n" + body)
}

func renderConfirmModal(width int, title, body string, focusConfirm bool) string {
	// No borders on the buttons: nested borders inside a colored modal leave
	// background artifacts on some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render("OK")
	cancel := btnBase.Render("Cancel")
	if focusConfirm {
		confirm = btnActive.Render("OK")
	} else {
		cancel = btnActive.Render("Cancel")
	}
	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")
	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

func renderPromptModal(width int, title string, input textinput.Model) string {
	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("enter: OK   esc: cancel")
	content := strings.Join([]string{
		renderInputLine(bodyW, input.View()),
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}
	// A text input always renders as one visual line; stray newlines would
	// look like the input wrapped.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate styling so the cut does not bleed.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// dialogModal mirrors the head of the dialog queue.
type dialogModal struct {
	req          dialog.Request
	active       bool
	input        textinput.Model
	focusConfirm bool
}

func newDialogInput() textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 255
	return in
}

// sync shows req, resetting the input only when a different request arrives.
func (d *dialogModal) sync(req dialog.Request, ok bool) {
	if !ok {
		d.active = false
		d.req = dialog.Request{}
		d.input.Blur()
		return
	}
	if d.active && d.req.ID == req.ID {
		return
	}
	d.active = true
	d.req = req
	d.focusConfirm = true
	d.input.Placeholder = req.Placeholder
	d.input.SetValue(req.Default)
	d.input.CursorEnd()
	if req.Kind == dialog.KindPrompt {
		d.input.Focus()
	} else {
		d.input.Blur()
	}
}

func (d dialogModal) view(width int) string {
	if d.req.Kind == dialog.KindConfirm {
		return renderConfirmModal(width, d.req.Title, d.req.Message, d.focusConfirm)
	}
	return renderPromptModal(width, d.req.Title, d.input)
}
