package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/recorder"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
)

type fakeLister struct {
	devs []devices.Device
	err  error
}

func (f *fakeLister) List(ctx context.Context) ([]devices.Device, error) {
	return f.devs, f.err
}

type fakeStudio struct {
	recording bool
	busy      bool
	startErr  error
	starts    []studio.StartRequest
}

func (f *fakeStudio) Start(ctx context.Context, req studio.StartRequest) (studio.Status, error) {
	if f.recording {
		return studio.Status{Recording: true}, recorder.ErrAlreadyRecording
	}
	if f.startErr != nil {
		return studio.Status{}, f.startErr
	}
	f.starts = append(f.starts, req)
	f.recording = true
	return studio.Status{Recording: true, Session: "session-20250101-120000"}, nil
}

func (f *fakeStudio) Stop(ctx context.Context) (studio.Status, error) {
	if !f.recording {
		return studio.Status{}, recorder.ErrNotRecording
	}
	f.recording = false
	return studio.Status{Processing: true}, nil
}

func (f *fakeStudio) Status() studio.Status {
	return studio.Status{Recording: f.recording}
}

func (f *fakeStudio) Busy() bool { return f.busy || f.recording }
func (f *fakeStudio) Wait()      {}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func newTestServer(t *testing.T, st *fakeStudio) (*implServer, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cfg.Paths.Sessions = filepath.Join(dir, "sessions")
	cfg.Paths.EnvFile = filepath.Join(dir, ".env")
	cfg.OpenAI.APIKey = "sk-test-abcd1234"

	lister := &fakeLister{devs: []devices.Device{{Index: 0, Name: "MacBook Microphone"}, {Index: 2, Name: "BlackHole 2ch"}}}
	s := New(cfg, Deps{Devices: lister, Studio: st}, logger.Discard()).(*implServer)
	return s, cfg
}

func do(t *testing.T, s *implServer, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, env
}

func TestHealthAndIndex(t *testing.T) {
	s, _ := newTestServer(t, &fakeStudio{})

	resp, env := do(t, s, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK || env.Status != "ok" {
		t.Errorf("health = %d %q", resp.StatusCode, env.Status)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	resp, _ = do(t, s, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("index = %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestListDevices(t *testing.T) {
	s, _ := newTestServer(t, &fakeStudio{})

	resp, env := do(t, s, http.MethodGet, "/api/v1/devices", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var devs []devices.Device
	if err := json.Unmarshal(env.Data, &devs); err != nil {
		t.Fatal(err)
	}
	if len(devs) != 2 || devs[1].Name != "BlackHole 2ch" {
		t.Errorf("devices = %+v", devs)
	}

	s.devices = &fakeLister{err: devices.ErrQuery}
	resp, _ = do(t, s, http.MethodGet, "/api/v1/devices", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status on query failure = %d, want 503", resp.StatusCode)
	}
}

func TestStartRecording(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"mic_index":0,"sys_index":2,"student":" Anna ","topic":"Scales"}`, http.StatusCreated},
		{"missing sys index", `{"mic_index":0}`, http.StatusBadRequest},
		{"negative index", `{"mic_index":-1,"sys_index":2}`, http.StatusBadRequest},
		{"unknown device", `{"mic_index":0,"sys_index":7}`, http.StatusBadRequest},
		{"bad engine", `{"mic_index":0,"sys_index":2,"engine":"remote"}`, http.StatusBadRequest},
		{"malformed", `{"mic_index":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStudio{}
			s, _ := newTestServer(t, st)
			resp, env := do(t, s, http.MethodPost, "/api/v1/recordings", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d (%s), want %d", resp.StatusCode, env.Message, tt.want)
			}
			if tt.want != http.StatusCreated {
				if len(st.starts) != 0 {
					t.Error("studio started on a rejected request")
				}
				return
			}
			if len(st.starts) != 1 {
				t.Fatalf("starts = %d", len(st.starts))
			}
			got := st.starts[0]
			if got.MicIndex != 0 || got.SysIndex != 2 || got.Student != "Anna" || got.Engine != config.EngineLocal {
				t.Errorf("start request = %+v", got)
			}
		})
	}
}

func TestStartRecordingConflict(t *testing.T) {
	s, _ := newTestServer(t, &fakeStudio{recording: true})

	resp, _ := do(t, s, http.MethodPost, "/api/v1/recordings", `{"mic_index":0,"sys_index":2}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestStartRecordingMissingCredentials(t *testing.T) {
	st := &fakeStudio{}
	s, cfg := newTestServer(t, st)
	cfg.OpenAI.APIKey = ""

	resp, env := do(t, s, http.MethodPost, "/api/v1/recordings", `{"mic_index":0,"sys_index":2}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(env.Message, "OPENAI_API_KEY") {
		t.Errorf("message = %q", env.Message)
	}
	if len(st.starts) != 0 {
		t.Error("recording started without credentials")
	}
}

func TestStartRecordingFailure(t *testing.T) {
	s, _ := newTestServer(t, &fakeStudio{startErr: errors.New("ffmpeg exited")})

	resp, _ := do(t, s, http.MethodPost, "/api/v1/recordings", `{"mic_index":0,"sys_index":2}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestStopRecording(t *testing.T) {
	st := &fakeStudio{}
	s, _ := newTestServer(t, st)

	resp, _ := do(t, s, http.MethodPost, "/api/v1/recordings/stop", "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("stop while idle = %d, want 409", resp.StatusCode)
	}

	st.recording = true
	resp, env := do(t, s, http.MethodPost, "/api/v1/recordings/stop", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("stop = %d, want 202", resp.StatusCode)
	}
	var status studio.Status
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatal(err)
	}
	if !status.Processing {
		t.Errorf("status = %+v, want processing", status)
	}
}

func TestSessionsAndArtifacts(t *testing.T) {
	s, cfg := newTestServer(t, &fakeStudio{})
	if err := os.MkdirAll(cfg.Paths.Sessions, 0o755); err != nil {
		t.Fatal(err)
	}
	audio := filepath.Join(cfg.Paths.Sessions, "session-20250101-120000.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(audio+".txt", []byte("0.00-1.00: hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, env := do(t, s, http.MethodGet, "/api/v1/sessions", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sessions = %d", resp.StatusCode)
	}
	var list []sessionEntry
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || !list[0].HasTranscript || list[0].HasSummary {
		t.Fatalf("sessions = %+v", list)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/sessions/session-20250101-120000/transcript", http.StatusOK},
		{"/api/v1/sessions/session-20250101-120000/summary", http.StatusNotFound},
		{"/api/v1/sessions/session-20250101-120000/video", http.StatusBadRequest},
		{"/api/v1/sessions/session-20990101-000000/audio", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, _ := do(t, s, http.MethodGet, tt.path, "")
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestGetSettingsMasksSecrets(t *testing.T) {
	s, _ := newTestServer(t, &fakeStudio{})

	_, env := do(t, s, http.MethodGet, "/api/v1/settings", "")
	var data struct {
		Settings map[string]string `json:"settings"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if got := data.Settings[config.EnvOpenAIKey]; got != "************1234" {
		t.Errorf("openai key = %q", got)
	}
	if got := data.Settings[config.EnvOpenAIModel]; got != "gpt-4o-mini" {
		t.Errorf("summary model = %q", got)
	}
}

func TestPutSettings(t *testing.T) {
	s, cfg := newTestServer(t, &fakeStudio{})

	body := `{"OPENAI_API_KEY":"************1234","NOTION_DATABASE_ID":"db-42"}`
	resp, env := do(t, s, http.MethodPut, "/api/v1/settings", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, env.Message)
	}

	saved, err := godotenv.Read(cfg.Paths.EnvFile)
	if err != nil {
		t.Fatal(err)
	}
	if saved[config.EnvNotionDatabaseID] != "db-42" {
		t.Errorf("env file = %v", saved)
	}
	if _, ok := saved[config.EnvOpenAIKey]; ok {
		t.Error("masked secret was written back to the env file")
	}
	if cfg.Notion.DatabaseID != "db-42" || cfg.OpenAI.APIKey != "sk-test-abcd1234" {
		t.Errorf("config not updated: notion=%q openai=%q", cfg.Notion.DatabaseID, cfg.OpenAI.APIKey)
	}
}

func TestPutSettingsRejected(t *testing.T) {
	tests := []struct {
		name string
		busy bool
		body string
		want int
	}{
		{"busy", true, `{"NOTION_DATABASE_ID":"db"}`, http.StatusConflict},
		{"unknown key", false, `{"PATH":"/tmp"}`, http.StatusBadRequest},
		{"malformed", false, `{"NOTION_DATABASE_ID":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, cfg := newTestServer(t, &fakeStudio{busy: tt.busy})
			resp, _ := do(t, s, http.MethodPut, "/api/v1/settings", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if _, err := os.Stat(cfg.Paths.EnvFile); !errors.Is(err, os.ErrNotExist) {
				t.Error("env file written for a rejected update")
			}
		})
	}
}
