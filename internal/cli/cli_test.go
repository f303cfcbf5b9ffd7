package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/audio"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/transcriber"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

const deviceListing = `[AVFoundation indev @ 0x7fa1c8e04a40] AVFoundation video devices:
[AVFoundation indev @ 0x7fa1c8e04a40] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7fa1c8e04a40] AVFoundation audio devices:
[AVFoundation indev @ 0x7fa1c8e04a40] [0] MacBook Pro Microphone
[AVFoundation indev @ 0x7fa1c8e04a40] [1] BlackHole 2ch
Error opening input file .
`

type fakeExecutor struct {
	executor.Executor
	out string
	err error
	// srt is what the fake whisper.cpp writes next to its --output-file prefix
	srt string
}

func (f *fakeExecutor) Probe(ctx context.Context, name string, args ...string) (string, error) {
	return f.out, f.err
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--output-file" {
			time.Sleep(20 * time.Millisecond)
			return "", os.WriteFile(args[i+1]+".srt", []byte(f.srt), 0o644)
		}
	}
	return "", fmt.Errorf("unexpected command %s %v", name, args)
}

// Start stands in for the ffmpeg capture: on "q" it writes five seconds of tone
// to the output path and exits.
func (f *fakeExecutor) Start(opts executor.StartOptions, name string, args ...string) (executor.Process, error) {
	return &captureProcess{out: args[len(args)-1], done: make(chan struct{})}, nil
}

type captureProcess struct {
	out  string
	once sync.Once
	done chan struct{}
	err  error
}

func (p *captureProcess) PID() int { return 7 }

func (p *captureProcess) Write(b []byte) (int, error) {
	if strings.TrimSpace(string(b)) == "q" {
		p.once.Do(func() {
			p.err = audio.WriteTone(p.out, 5*time.Second, 16000, 1, 440)
			close(p.done)
		})
	}
	return len(b), nil
}

func (p *captureProcess) Interrupt() error { return nil }

func (p *captureProcess) Kill() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *captureProcess) Wait(timeout time.Duration) error {
	select {
	case <-p.done:
		return p.err
	case <-time.After(timeout):
		return executor.ErrWaitTimeout
	}
}

func (p *captureProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

type testEnv struct {
	dir     string
	cfgPath string
	env     map[string]string
	exec    *fakeExecutor
	stdin   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`paths:
  sessions: %[1]s/sessions
  state: %[1]s/state
  exports: %[1]s/exports
  inbox: %[1]s/inbox
  env_file: %[1]s/.env
logging:
  level: error
`, dir)
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return &testEnv{
		dir:     dir,
		cfgPath: cfgPath,
		env:     map[string]string{},
		exec:    &fakeExecutor{out: deviceListing},
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	lookup := func(key string) (string, bool) {
		v, ok := e.env[key]
		return v, ok
	}
	a := newApp(e.exec, lookup)
	root := newRootCommand(a)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(e.stdin))
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))

	err := root.ExecuteContext(context.Background())
	a.close()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) sessionsDir() string {
	return filepath.Join(e.dir, "sessions")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDevicesCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "devices")
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	for _, want := range []string{"Index", "MacBook Pro Microphone", "BlackHole 2ch"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "FaceTime") {
		t.Error("video devices must not be listed")
	}
}

func TestDevicesCommandQueryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.exec.err = errors.New(`exec: "ffmpeg": executable file not found in $PATH`)

	_, _, err := env.run(t, "devices")
	if !errors.Is(err, devices.ErrQuery) {
		t.Errorf("err = %v, want ErrQuery", err)
	}
}

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing flags", []string{"record"}, "required flag"},
		{"unknown device", []string{"record", "--mic-index", "0", "--sys-index", "9"}, "unknown audio device index 9"},
		{"negative device", []string{"record", "--mic-index", "-2", "--sys-index", "1"}, "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, _, err := env.run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if _, err := os.Stat(env.sessionsDir()); !errors.Is(err, os.ErrNotExist) {
				t.Error("sessions directory created for a rejected recording")
			}
		})
	}
}

func TestMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		setup func(t *testing.T, env *testEnv)
	}{
		{"session", []string{"session", "--mic-index", "0", "--sys-index", "1"}, nil},
		{"session cloud publish", []string{"session", "--mic-index", "0", "--sys-index", "1", "--engine", "cloud", "--publish"}, nil},
		{"summarize", []string{"summarize", "--transcript", "lesson.wav.txt"}, nil},
		{"publish", nil, func(t *testing.T, env *testEnv) {
			md := filepath.Join(env.dir, "lesson.wav.md")
			writeFile(t, md, "# Lesson notes\n")
			env.env[config.EnvOpenAIKey] = "sk-test"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			args := tt.args
			if tt.setup != nil {
				tt.setup(t, env)
			}
			if args == nil {
				args = []string{"publish", "--md", filepath.Join(env.dir, "lesson.wav.md")}
			}

			_, _, err := env.run(t, args...)
			if !errors.Is(err, config.ErrMissingCredential) {
				t.Fatalf("err = %v, want a missing credential error", err)
			}
		})
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	env := newTestEnv(t)
	wav := filepath.Join(env.dir, "missing.wav")

	_, _, err := env.run(t, "transcribe", "--audio", wav)
	var terr *transcriber.Error
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *transcriber.Error", err)
	}
	if _, err := os.Stat(wav + ".txt"); !errors.Is(err, os.ErrNotExist) {
		t.Error("transcript created for missing audio")
	}
}

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)
	base := filepath.Join(env.sessionsDir(), "session-20250101-120000.wav")
	writeFile(t, base+".md", "# Lesson notes\n\n## Homework\n- [ ] Scales at 80 bpm\n")
	writeFile(t, base+".txt", "0.00-2.50: play the C major scale\n")

	out, _, err := env.run(t, "export", "--summary", base+".md")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	files := strings.Fields(out)
	if len(files) != 2 {
		t.Fatalf("exported files = %v, want summary and transcript", files)
	}
	for _, f := range files {
		if filepath.Dir(f) != filepath.Join(env.dir, "exports") {
			t.Errorf("%s not in the exports directory", f)
		}
		if _, err := os.Stat(f); err != nil {
			t.Errorf("stat %s: %v", f, err)
		}
	}
}

func TestHistoryCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No sessions") {
		t.Errorf("empty history output = %q", out)
	}

	older := filepath.Join(env.sessionsDir(), "session-20250101-120000.wav")
	newer := filepath.Join(env.sessionsDir(), "session-20250102-120000.wav")
	writeFile(t, older, "RIFF")
	writeFile(t, older+".txt", "0.00-1.00: hi\n")
	writeFile(t, newer, strings.Repeat("x", 2048))
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	out, _, err = env.run(t, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "session-20250102-120000") || strings.Contains(out, "session-20250101-120000") {
		t.Errorf("history --limit 1 output:\n%s", out)
	}
	if !strings.Contains(out, "2.0 KB") {
		t.Errorf("history missing audio size:\n%s", out)
	}
}

func TestMalformedConfig(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, env.cfgPath, "paths: [unclosed\n")

	if _, _, err := env.run(t, "history"); err == nil || !strings.Contains(err.Error(), "load config") {
		t.Errorf("err = %v, want load config error", err)
	}
}

func TestWaitForStop(t *testing.T) {
	done := make(chan struct{})
	go func() {
		waitForStop(context.Background(), strings.NewReader("\n"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enter did not stop the wait")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		waitForStop(ctx, strings.NewReader(""))
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("closed stdin must not stop the wait")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel did not stop the wait")
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.in); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSessionCommand(t *testing.T) {
	env := newTestEnv(t)
	env.stdin = "\n"
	env.env[config.EnvOpenAIKey] = "sk-test"
	env.exec.srt = "1\n00:00:00,000 --> 00:00:02,500\nPlay the C chord.\n\n2\n00:00:02,500 --> 00:00:05,000\nNow the G chord.\n"

	prompts := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body bytes.Buffer
		body.ReadFrom(r.Body)
		select {
		case prompts <- body.String():
		default:
		}
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"## Lesson results\n- C and G chords"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg, err := os.ReadFile(env.cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg = append(cfg, []byte("openai:\n  base_url: "+srv.URL+"/v1\n")...)
	writeFile(t, env.cfgPath, string(cfg))

	out, stderr, err := env.run(t, "session", "--mic-index", "0", "--sys-index", "1", "--engine", "local", "--student", "A", "--topic", "B")
	if err != nil {
		t.Fatalf("session: %v\n%s", err, stderr)
	}

	entries, err := os.ReadDir(env.sessionsDir())
	if err != nil {
		t.Fatal(err)
	}
	var wav string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".wav") {
			wav = filepath.Join(env.sessionsDir(), e.Name())
		}
	}
	if wav == "" {
		t.Fatalf("no recording in %s", env.sessionsDir())
	}

	info, err := audio.Inspect(wav)
	if err != nil {
		t.Fatalf("Inspect(%s): %v", wav, err)
	}
	if info.Duration < 4900*time.Millisecond {
		t.Errorf("recording duration = %s, want about 5s", info.Duration)
	}

	paths := []string{wav, wav + ".txt", wav + ".md"}
	var prev time.Time
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if !fi.ModTime().After(prev) {
			t.Errorf("%s modified at %s, not after the previous artifact (%s)", filepath.Base(p), fi.ModTime(), prev)
		}
		prev = fi.ModTime()
		if !strings.Contains(out, p) {
			t.Errorf("output does not name %s:\n%s", p, out)
		}
	}

	transcript, err := os.ReadFile(wav + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(transcript) != "0.00-2.50: Play the C chord.\n2.50-5.00: Now the G chord.\n" {
		t.Errorf("transcript = %q", transcript)
	}
	summary, err := os.ReadFile(wav + ".md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(summary), "C and G chords") {
		t.Errorf("summary = %q", summary)
	}
	select {
	case prompt := <-prompts:
		if !strings.Contains(prompt, "Play the C chord.") {
			t.Errorf("summary prompt does not carry the transcript: %s", prompt)
		}
	default:
		t.Error("summary provider was not called")
	}
}
