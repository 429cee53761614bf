// Package tui is a minimal terminal preview for a snippet session.
//
// It draws the live rendered text, highlights the active tab in a
// status line, and maps keys onto the session API: Tab and Backtab
// cycle, typing edits the active field, Up/Down re-select a choice,
// Enter accepts, Escape cancels. It is host tooling around the engine,
// not part of it.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/snipstorm/internal/engine/fragment"
	"github.com/dshills/snipstorm/internal/session"
)

// UI drives one session interactively.
type UI struct {
	screen tcell.Screen
	sess   *session.Session

	// edits holds in-progress text per tab number.
	edits map[int]string

	status string
}

// New creates a UI over a session.
func New(sess *session.Session) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &UI{
		screen: screen,
		sess:   sess,
		edits:  make(map[int]string),
	}, nil
}

// Run takes over the terminal until the user accepts (Enter) or
// cancels (Escape). Returns the final rendered text and whether the
// expansion was accepted.
func (u *UI) Run() (text string, accepted bool, err error) {
	if err := u.screen.Init(); err != nil {
		return "", false, err
	}
	defer u.screen.Fini()

	u.screen.SetStyle(tcell.StyleDefault)
	u.sess.Next() // activate the first tab, if any

	for {
		u.draw()

		ev := u.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return u.sess.Render(), false, nil
			case tcell.KeyEnter:
				return u.sess.Render(), true, nil
			case tcell.KeyTab:
				u.sess.Next()
			case tcell.KeyBacktab:
				u.sess.Previous()
			case tcell.KeyUp:
				u.selectChoice(-1)
			case tcell.KeyDown:
				u.selectChoice(1)
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				u.backspace()
			case tcell.KeyRune:
				u.typeRune(ev.Rune())
			}
		}
	}
}

func (u *UI) typeRune(r rune) {
	num, ok := u.sess.ActiveTab()
	if !ok {
		return
	}
	buf, seen := u.edits[num]
	if !seen {
		// First keystroke replaces the default content.
		buf = ""
	}
	buf += string(r)
	u.edits[num] = buf
	u.applyEdit(buf)
}

func (u *UI) backspace() {
	num, ok := u.sess.ActiveTab()
	if !ok {
		return
	}
	buf, seen := u.edits[num]
	if !seen {
		buf = u.sess.ActiveFieldText()
	}
	if buf == "" {
		return
	}
	runes := []rune(buf)
	buf = string(runes[:len(runes)-1])
	u.edits[num] = buf
	u.applyEdit(buf)
}

func (u *UI) applyEdit(text string) {
	if err := u.sess.Edit(text); err != nil {
		u.status = err.Error()
	} else {
		u.status = ""
	}
}

func (u *UI) selectChoice(delta int) {
	f, ok := u.sess.ActiveField()
	if !ok || f.Kind != fragment.Choice || len(f.Options) == 0 {
		return
	}
	next := (f.Selected + delta + len(f.Options)) % len(f.Options)
	if err := u.sess.SelectChoice(next); err != nil {
		u.status = err.Error()
	} else {
		u.status = ""
	}
}

func (u *UI) draw() {
	u.screen.Clear()

	width, height := u.screen.Size()
	lines := strings.Split(u.sess.Render(), "\n")
	for y, line := range lines {
		if y >= height-1 {
			break
		}
		drawText(u.screen, 0, y, width, line, tcell.StyleDefault)
	}

	drawText(u.screen, 0, height-1, width, u.statusLine(), tcell.StyleDefault.Reverse(true))
	u.screen.Show()
}

func (u *UI) statusLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s ", u.sess.Name)
	if num, ok := u.sess.ActiveTab(); ok {
		fmt.Fprintf(&b, "| tab %d/%d ", num, u.sess.Tabs())
	} else {
		b.WriteString("| no tabs ")
	}
	b.WriteString("| Tab/S-Tab cycle  Up/Down choice  Enter accept  Esc cancel")
	if u.status != "" {
		fmt.Fprintf(&b, " | %s", u.status)
	}
	return b.String()
}

func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			break
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
}
