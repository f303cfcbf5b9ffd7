package console

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
)

const previewLines = 20

// Picker is the device list that has keyboard focus.
type Picker int

const (
	PickMic Picker = iota
	PickSys
)

// Model is the root bubbletea model of the console.
type Model struct {
	cfg    *config.Config
	studio studio.Studio
	lister devices.Lister
	opts   Options

	devices   []devices.Device
	loading   bool
	micCursor int
	sysCursor int
	focus     Picker

	status   studio.Status
	now      time.Time
	pending  bool
	quitting bool

	errorMessage string
	previewFor   string
	preview      string
	width        int
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadDevicesCmd(m.lister), tickCmd())
}

func loadDevicesCmd(lister devices.Lister) tea.Cmd {
	return func() tea.Msg {
		devs, err := lister.List(context.Background())
		return DevicesLoadedMsg{Devices: devs, Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func startCmd(st studio.Studio, req studio.StartRequest) tea.Cmd {
	return func() tea.Msg {
		status, err := st.Start(context.Background(), req)
		return StartedMsg{Status: status, Err: err}
	}
}

func stopCmd(st studio.Studio) tea.Cmd {
	return func() tea.Msg {
		status, err := st.Stop(context.Background())
		return StoppedMsg{Status: status, Err: err}
	}
}

func loadPreviewCmd(out processor.Outcome) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(out.SummaryPath)
		if err != nil {
			return PreviewMsg{Session: out.Session, Err: err}
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) > previewLines {
			lines = append(lines[:previewLines], "…")
		}
		return PreviewMsg{Session: out.Session, Text: strings.Join(lines, "\n")}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case DevicesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		m.devices = msg.Devices
		m.micCursor = m.cursorFor(m.opts.MicIndex, m.micCursor)
		m.sysCursor = m.cursorFor(m.opts.SysIndex, m.sysCursor)
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		m.status = m.studio.Status()
		return m, tea.Batch(tickCmd(), m.previewIfReady())

	case StartedMsg:
		m.pending = false
		m.status = msg.Status
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		m.errorMessage = ""
		return m, nil

	case StoppedMsg:
		m.pending = false
		m.status = msg.Status
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case PreviewMsg:
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		m.preview = msg.Text
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		if m.status.Recording {
			m.quitting = true
			m.pending = true
			return m, stopCmd(m.studio)
		}
		return m, tea.Quit

	case KeyTab:
		if m.focus == PickMic {
			m.focus = PickSys
		} else {
			m.focus = PickMic
		}

	case KeyUp, KeyK:
		m.moveCursor(-1)

	case KeyDown, KeyJ:
		m.moveCursor(1)

	case KeyReload:
		if !m.status.Recording {
			m.loading = true
			return m, loadDevicesCmd(m.lister)
		}

	case KeyPublish:
		if !m.status.Recording {
			m.opts.Publish = !m.opts.Publish
		}

	case KeyRecord, KeySpace:
		if m.pending {
			return m, nil
		}
		if m.status.Recording {
			m.pending = true
			return m, stopCmd(m.studio)
		}
		req, err := m.startRequest()
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.pending = true
		m.errorMessage = ""
		return m, startCmd(m.studio, req)
	}

	return m, nil
}

// startRequest builds a recording request from the pickers, refusing it when the
// selected engine, provider or publishing lacks credentials.
func (m Model) startRequest() (studio.StartRequest, error) {
	if len(m.devices) == 0 {
		return studio.StartRequest{}, errors.New("no audio devices available, press d to reload")
	}

	engine := m.opts.Engine
	if engine == "" {
		engine = m.cfg.Transcribe.Engine
	}
	engine, err := config.NormalizeEngine(engine)
	if err != nil {
		return studio.StartRequest{}, err
	}
	publish := m.opts.Publish || m.cfg.Summary.Publish
	if err := m.cfg.RequireCredentials(engine, m.cfg.Summary.Provider, publish); err != nil {
		return studio.StartRequest{}, err
	}

	return studio.StartRequest{
		MicIndex: m.devices[m.micCursor].Index,
		SysIndex: m.devices[m.sysCursor].Index,
		Student:  m.opts.Student,
		Topic:    m.opts.Topic,
		Engine:   engine,
		Language: m.opts.Language,
		Publish:  publish,
	}, nil
}

// previewIfReady loads the summary of a finished run once.
func (m *Model) previewIfReady() tea.Cmd {
	out := m.status.LastOutcome
	if out == nil || m.status.Processing || out.Session == m.previewFor {
		return nil
	}
	m.previewFor = out.Session
	return loadPreviewCmd(*out)
}

func (m *Model) moveCursor(delta int) {
	if m.status.Recording || len(m.devices) == 0 {
		return
	}
	cursor := &m.micCursor
	if m.focus == PickSys {
		cursor = &m.sysCursor
	}
	*cursor = (*cursor + delta + len(m.devices)) % len(m.devices)
}

// cursorFor positions a picker on the device with the given index, keeping the
// current position when that device is not listed.
func (m Model) cursorFor(index, current int) int {
	for i, d := range m.devices {
		if d.Index == index {
			return i
		}
	}
	if current >= len(m.devices) {
		return 0
	}
	return current
}

// Elapsed is the recording time as of the last tick.
func (m Model) Elapsed() time.Duration {
	if !m.status.Recording {
		return 0
	}
	if m.status.StartedAt == nil || m.now.IsZero() {
		return time.Duration(m.status.ElapsedSeconds * float64(time.Second)).Truncate(time.Second)
	}
	d := m.now.Sub(*m.status.StartedAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}
