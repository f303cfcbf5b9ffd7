package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/nguyentantai21042004/lesson-recorder/internal/summarizer"
)

func (s *implServer) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_devices",
		mcp.WithDescription("List the audio input devices ffmpeg can capture from, with their indices."),
	), s.listDevices)

	s.mcp.AddTool(mcp.NewTool("transcribe",
		mcp.WithDescription("Transcribe a lesson recording. The transcript is written next to the audio as <audio>.txt."),
		mcp.WithString("audio_path", mcp.Required(), mcp.Description("Path to the audio file")),
		mcp.WithString("engine", mcp.Description("Transcription engine"), mcp.Enum(config.EngineLocal, config.EngineCloud)),
		mcp.WithString("language", mcp.Description("Language code such as ru or en; empty detects it")),
	), s.transcribe)

	s.mcp.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Write structured lesson notes for a transcript, optionally publishing them to Notion."),
		mcp.WithString("transcript_path", mcp.Required(), mcp.Description("Path to the transcript file")),
		mcp.WithString("student", mcp.Description("Student name")),
		mcp.WithString("topic", mcp.Description("Lesson topic")),
		mcp.WithBoolean("publish", mcp.Description("Also create a Notion page")),
	), s.summarize)

	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List recorded sessions, newest first, with their artifacts and pipeline progress."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions, 0 for all")),
	), s.listSessions)
}

func (s *implServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info(ctx, "MCP server listening on stdio")
	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *implServer) listDevices(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devs, err := s.devices.List(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("device query failed", err), nil
	}
	return jsonResult(devs)
}

func (s *implServer) transcribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	audioPath, err := req.RequireString("audio_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	engine := req.GetString("engine", s.cfg.Transcribe.Engine)
	language := req.GetString("language", s.cfg.Transcribe.Language)

	transcriptPath, err := s.transcriber.Transcribe(ctx, audioPath, engine, language)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("transcription failed", err), nil
	}
	s.markStage(ctx, session.FromAudio(audioPath).Name, catalog.StageTranscribed, "")

	return jsonResult(map[string]string{"transcript_path": transcriptPath})
}

func (s *implServer) summarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcriptPath, err := req.RequireString("transcript_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	publish := req.GetBool("publish", false)

	sum, err := s.newSummarizer(ctx, publish)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("summarizer unavailable", err), nil
	}
	res, err := sum.Summarize(ctx, summarizer.Request{
		TranscriptPath: transcriptPath,
		Student:        req.GetString("student", ""),
		Topic:          req.GetString("topic", ""),
		Publish:        publish,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("summary failed", err), nil
	}

	name := session.FromTranscript(transcriptPath).Name
	s.markStage(ctx, name, catalog.StageSummarized, "")

	out := map[string]string{"summary_path": res.SummaryPath}
	switch {
	case res.PublishErr != nil:
		out["publish_warning"] = res.PublishErr.Error()
		s.markStage(ctx, name, catalog.StageFailed, res.PublishErr.Error())
	case res.PageID != "":
		out["page_id"] = res.PageID
		s.markStage(ctx, name, catalog.StagePublished, res.PageID)
	}
	return jsonResult(out)
}

func (s *implServer) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := session.Scan(s.cfg.Paths.Sessions)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("scan sessions", err), nil
	}
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(infos) {
		infos = infos[:limit]
	}

	type entry struct {
		session.Info
		Record *catalog.Record `json:"catalog,omitempty"`
	}
	out := make([]entry, 0, len(infos))
	for _, info := range infos {
		e := entry{Info: info}
		if s.catalog != nil {
			if rec, err := s.catalog.Get(ctx, info.Name); err == nil {
				e.Record = &rec
			}
		}
		out = append(out, e)
	}
	return jsonResult(out)
}

// markStage records tool progress in the catalog. Failures are only logged.
func (s *implServer) markStage(ctx context.Context, name string, stage catalog.Stage, detail string) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.MarkStage(ctx, name, stage, detail); err != nil {
		s.logger.Warn(ctx, "Catalog update failed: %v", err)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
