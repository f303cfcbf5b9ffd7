package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/publisher"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/nguyentantai21042004/lesson-recorder/internal/summarizer"
)

type fakeLister struct {
	devs []devices.Device
	err  error
}

func (f fakeLister) List(ctx context.Context) ([]devices.Device, error) { return f.devs, f.err }

type fakeTranscriber struct {
	calls []string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, engine, language string) (string, error) {
	f.calls = append(f.calls, engine+"/"+language)
	if f.err != nil {
		return "", f.err
	}
	return session.TranscriptPathFor(audioPath), nil
}

type fakeSummarizer struct {
	summarizer.Summarizer
	req summarizer.Request
	res summarizer.Result
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error) {
	f.req = req
	return f.res, f.err
}

func newTestServer(t *testing.T, tr *fakeTranscriber, sum *fakeSummarizer) (*implServer, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.Sessions = t.TempDir()

	deps := Deps{
		Devices:     fakeLister{devs: []devices.Device{{Index: 0, Name: "MacBook Microphone"}}},
		Transcriber: tr,
		NewSummarizer: func(ctx context.Context, publish bool) (summarizer.Summarizer, error) {
			if sum == nil {
				return nil, &config.CredentialError{Variable: "OPENAI_API_KEY", Purpose: "summary generation"}
			}
			return sum, nil
		},
	}
	return New(cfg, deps, logger.Discard()).(*implServer), cfg
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil {
		t.Fatal("nil tool result")
	}
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	t.Fatal("tool result has no text content")
	return ""
}

func TestToolsAreListed(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, &fakeSummarizer{})

	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"list_devices", "transcribe", "summarize", "list_sessions"} {
		if !strings.Contains(string(data), `"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, data)
		}
	}
}

func TestListDevices(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, &fakeSummarizer{})

	res, err := s.listDevices(context.Background(), callRequest("list_devices", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(resultText(t, res), "MacBook Microphone") {
		t.Errorf("result = %+v", res)
	}

	s.devices = fakeLister{err: devices.ErrQuery}
	res, _ = s.listDevices(context.Background(), callRequest("list_devices", nil))
	if !res.IsError {
		t.Error("query failure should be a tool error")
	}
}

func TestTranscribeTool(t *testing.T) {
	tr := &fakeTranscriber{}
	s, cfg := newTestServer(t, tr, &fakeSummarizer{})
	audio := filepath.Join(cfg.Paths.Sessions, "session-20250101-120000.wav")

	res, err := s.transcribe(context.Background(), callRequest("transcribe", map[string]interface{}{
		"audio_path": audio,
		"engine":     "cloud",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), audio+".txt") {
		t.Errorf("result = %s", resultText(t, res))
	}
	if len(tr.calls) != 1 || tr.calls[0] != "cloud/ru" {
		t.Errorf("calls = %v, want [cloud/ru]", tr.calls)
	}
}

func TestTranscribeToolErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		err  error
	}{
		{"missing audio path", map[string]interface{}{}, nil},
		{"engine failure", map[string]interface{}{"audio_path": "/x.wav"}, errors.New("whisper crashed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeTranscriber{err: tt.err}, &fakeSummarizer{})
			res, err := s.transcribe(context.Background(), callRequest("transcribe", tt.args))
			if err != nil {
				t.Fatalf("protocol error = %v, want tool error", err)
			}
			if !res.IsError {
				t.Error("expected tool error")
			}
		})
	}
}

func TestSummarizeTool(t *testing.T) {
	pubErr := &publisher.Error{Target: "notion", Err: errors.New("401")}
	sum := &fakeSummarizer{res: summarizer.Result{SummaryPath: "/s/a.wav.md", PublishErr: pubErr}}
	s, _ := newTestServer(t, &fakeTranscriber{}, sum)

	res, err := s.summarize(context.Background(), callRequest("summarize", map[string]interface{}{
		"transcript_path": "/s/a.wav.txt",
		"student":         "Anna",
		"topic":           "Scales",
		"publish":         true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("publish failure must not fail the tool: %s", resultText(t, res))
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out["summary_path"] != "/s/a.wav.md" || !strings.Contains(out["publish_warning"], "401") {
		t.Errorf("result = %v", out)
	}
	if sum.req.Student != "Anna" || !sum.req.Publish {
		t.Errorf("request = %+v", sum.req)
	}
}

func TestSummarizeToolMissingCredentials(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, nil)

	res, err := s.summarize(context.Background(), callRequest("summarize", map[string]interface{}{
		"transcript_path": "/s/a.wav.txt",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "OPENAI_API_KEY") {
		t.Errorf("result = %+v", res)
	}
}

func TestListSessionsTool(t *testing.T) {
	s, cfg := newTestServer(t, &fakeTranscriber{}, &fakeSummarizer{})
	for _, name := range []string{"session-20250101-120000", "session-20250102-120000"} {
		if err := os.WriteFile(filepath.Join(cfg.Paths.Sessions, name+".wav"), []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.listSessions(context.Background(), callRequest("list_sessions", map[string]interface{}{"limit": 1}))
	if err != nil {
		t.Fatal(err)
	}
	var out []session.Info
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Errorf("sessions = %d, want 1", len(out))
	}
}
