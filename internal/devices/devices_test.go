package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

const listingTwoDevices = `[AVFoundation indev @ 0x7fa1c8e04a40] AVFoundation video devices:
[AVFoundation indev @ 0x7fa1c8e04a40] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7fa1c8e04a40] [1] Capture screen 0
[AVFoundation indev @ 0x7fa1c8e04a40] AVFoundation audio devices:
[AVFoundation indev @ 0x7fa1c8e04a40] [0] MacBook Pro Microphone
[AVFoundation indev @ 0x7fa1c8e04a40] [1] BlackHole 2ch
[in#0 @ 0x7fa1c8e04780] Error opening input: Input/output error
Error opening input file .
`

type fakeExecutor struct {
	executor.Executor
	out  string
	err  error
	args []string
}

func (f *fakeExecutor) Probe(ctx context.Context, name string, args ...string) (string, error) {
	f.args = append([]string{name}, args...)
	return f.out, f.err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    []Device
		wantErr bool
	}{
		{
			name:   "two audio devices after video section",
			output: listingTwoDevices,
			want: []Device{
				{Index: 0, Name: "MacBook Pro Microphone"},
				{Index: 1, Name: "BlackHole 2ch"},
			},
		},
		{
			name: "audio section first stops at video header",
			output: "[x] AVFoundation audio devices:\n[x] [3] USB Mic\n" +
				"[x] AVFoundation video devices:\n[x] [0] Camera\n",
			want: []Device{{Index: 3, Name: "USB Mic"}},
		},
		{
			name:   "header without devices",
			output: "[x] AVFoundation audio devices:\nError opening input\n",
			want:   []Device{},
		},
		{
			name:    "no audio header",
			output:  "ffmpeg: command not understood\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.output)
			if tt.wantErr {
				if !errors.Is(err, ErrQuery) {
					t.Fatalf("Parse() error = %v, want ErrQuery", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("device[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestListTwoDevices(t *testing.T) {
	exec := &fakeExecutor{out: listingTwoDevices}
	lister := New("ffmpeg", exec, logger.Discard())

	devs, err := lister.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(devs) != 2 {
		t.Fatalf("List() returned %d devices, want 2", len(devs))
	}
	seen := map[int]bool{}
	for _, d := range devs {
		if d.Index < 0 {
			t.Errorf("negative index %d", d.Index)
		}
		if seen[d.Index] {
			t.Errorf("duplicate index %d", d.Index)
		}
		seen[d.Index] = true
	}

	want := []string{"ffmpeg", "-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""}
	if len(exec.args) != len(want) {
		t.Fatalf("args = %q", exec.args)
	}
	for i := range want {
		if exec.args[i] != want[i] {
			t.Errorf("arg[%d] = %q, want %q", i, exec.args[i], want[i])
		}
	}
}

func TestListQueryFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exec: \"ffmpeg\": executable file not found in $PATH")}
	lister := New("ffmpeg", exec, logger.Discard())

	_, err := lister.List(context.Background())
	if !errors.Is(err, ErrQuery) {
		t.Errorf("List() error = %v, want ErrQuery", err)
	}
}

func TestFind(t *testing.T) {
	devs := []Device{{Index: 0, Name: "Mic"}, {Index: 2, Name: "BlackHole 2ch"}}

	if d, ok := Find(devs, 2); !ok || d.Name != "BlackHole 2ch" {
		t.Errorf("Find(2) = %+v, %v", d, ok)
	}
	if _, ok := Find(devs, 1); ok {
		t.Error("Find(1) should not match")
	}
}
