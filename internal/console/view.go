package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Lesson recorder"))
	b.WriteString("  ")
	b.WriteString(m.renderState())
	b.WriteString("\n\n")

	b.WriteString(m.renderLesson())
	b.WriteString("\n\n")

	mic := m.renderPicker("Microphone", PickMic, m.micCursor)
	sys := m.renderPicker("System audio", PickSys, m.sysCursor)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, mic, "    ", sys))
	b.WriteString("\n")

	if m.errorMessage != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errorMessage))
		b.WriteString("\n")
	}
	if m.status.LastWarning != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Warning: " + m.status.LastWarning))
		b.WriteString("\n")
	}
	if m.status.LastError != "" && m.status.LastError != m.errorMessage {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Last run failed: " + m.status.LastError))
		b.WriteString("\n")
	}

	if m.preview != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Summary of " + m.previewFor))
		b.WriteString("\n")
		box := previewStyle
		if m.width > 4 {
			box = box.Width(m.width - 4)
		}
		b.WriteString(box.Render(m.preview))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderState() string {
	switch {
	case m.pending && m.status.Recording:
		return processingStyle.Render("◐ Finalizing audio…")
	case m.pending:
		return processingStyle.Render("◐ Starting…")
	case m.status.Recording:
		return recordingStyle.Render(fmt.Sprintf("● REC %s  %s", m.status.Session, formatElapsed(m.Elapsed())))
	case m.status.Processing:
		return processingStyle.Render("◐ Transcribing and summarizing…")
	default:
		return idleStyle.Render("○ Idle")
	}
}

func (m Model) renderLesson() string {
	student := m.opts.Student
	if student == "" {
		student = "—"
	}
	topic := m.opts.Topic
	if topic == "" {
		topic = "—"
	}
	publish := "no"
	if m.opts.Publish || m.cfg.Summary.Publish {
		publish = "yes"
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Student:"), student,
		labelStyle.Render("Topic:"), topic,
		labelStyle.Render("Publish:"), publish)
}

func (m Model) renderPicker(title string, picker Picker, cursor int) string {
	var b strings.Builder
	if m.focus == picker {
		b.WriteString(panelTitleActiveStyle.Render(title))
	} else {
		b.WriteString(panelTitleStyle.Render(title))
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(labelStyle.Render("loading…"))
	case len(m.devices) == 0:
		b.WriteString(labelStyle.Render("no devices"))
	}
	for i, d := range m.devices {
		line := fmt.Sprintf("[%d] %s", d.Index, d.Name)
		if i == cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) help() string {
	if m.status.Recording {
		return "r/space stop • q stop and quit"
	}
	return "tab switch picker • ↑/↓ select • r/space record • p publish • d reload devices • q quit"
}

func formatElapsed(d time.Duration) string {
	total := int(d / time.Second)
	h, mnt, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
	}
	return fmt.Sprintf("%02d:%02d", mnt, s)
}
