// Package output provides styled terminal output helpers (success, error,
// warning, list/item/member formatting) using lipgloss, plus a JSON mode
// for scripting.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/listd/listd/internal/invite"
	"github.com/listd/listd/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	roleStyles   = map[models.Role]lipgloss.Style{
		models.RoleOwner:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		models.RoleAdmin:  lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.RoleEditor: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.RoleViewer: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// Success prints a green confirmation line.
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Error prints a red error line to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warning prints an amber warning line.
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("! " + fmt.Sprintf(format, args...)))
}

// Info prints a subtle informational line.
func Info(format string, args ...interface{}) {
	fmt.Println(subtleStyle.Render(fmt.Sprintf(format, args...)))
}

// JSON prints v as indented JSON for scripting.
func JSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatRole renders a role with its color.
func FormatRole(r models.Role) string {
	if style, ok := roleStyles[r]; ok {
		return style.Render(string(r))
	}
	return string(r)
}

// FormatList renders one list line: title, role, item count.
func FormatList(l *models.List, pending bool) string {
	title := titleStyle.Render(l.Title)
	if pending {
		title = pendingStyle.Render(l.Title + " …")
	}
	count := subtleStyle.Render(fmt.Sprintf("(%d)", l.ItemCount))
	return fmt.Sprintf("%s  %s %s  %s", subtleStyle.Render(ShortID(l.ID)), title, count, FormatRole(l.Role))
}

// FormatItem renders one item line with its checkbox.
func FormatItem(it *models.Item, pending bool) string {
	box := "[ ]"
	title := it.Title
	if it.Done {
		box = "[x]"
		title = doneStyle.Render(title)
	}
	if pending {
		title = pendingStyle.Render(it.Title + " …")
	}
	return fmt.Sprintf("%s %s %s", subtleStyle.Render(ShortID(it.ID)), box, title)
}

// FormatPermission renders one member line.
func FormatPermission(p *models.Permission) string {
	return fmt.Sprintf("%s  %s", p.Email, FormatRole(p.Role))
}

// FormatInvitation renders one pending invitation line.
func FormatInvitation(inv *models.Invitation) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		subtleStyle.Render(ShortID(inv.ID)), inv.Email, FormatRole(inv.Role),
		subtleStyle.Render("expires "+FormatTimeAgo(inv.ExpiresAt)))
}

// FormatInviteResult renders the batch outcome message. The three outcomes
// get distinct formats; partial lists the failures and the retry entry.
func FormatInviteResult(res *invite.Result) string {
	var b strings.Builder
	switch res.Outcome {
	case invite.AllSucceeded:
		b.WriteString(successStyle.Render(fmt.Sprintf("✓ invited %d", len(res.Succeeded))))
	case invite.AllFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ all %d invitations failed", len(res.Failed))))
	case invite.Partial:
		b.WriteString(warningStyle.Render(fmt.Sprintf("! invited %d, %d failed", len(res.Succeeded), len(res.Failed))))
	}
	for _, f := range res.Failed {
		b.WriteString("\n  " + errorStyle.Render(f.Email) + subtleStyle.Render(": "+f.Err.Error()))
	}
	if len(res.Failed) > 0 {
		b.WriteString("\n" + subtleStyle.Render("retry: "+res.Retry()))
	}
	return b.String()
}

// ShortID truncates an id for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatTimeAgo renders a relative timestamp ("2h ago", "in 3d", date for
// anything past a week).
func FormatTimeAgo(t time.Time) string {
	d := time.Since(t)
	future := d < 0
	if future {
		d = -d
	}

	var s string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		s = fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		s = fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		s = fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
	if future {
		return "in " + s
	}
	return s + " ago"
}
