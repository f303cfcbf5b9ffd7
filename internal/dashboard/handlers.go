package dashboard

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
)

type startRecordingRequest struct {
	MicIndex *int   `json:"mic_index" validate:"required,min=0"`
	SysIndex *int   `json:"sys_index" validate:"required,min=0"`
	Student  string `json:"student" validate:"max=200"`
	Topic    string `json:"topic" validate:"max=200"`
	Engine   string `json:"engine" validate:"omitempty,oneof=local cloud openai"`
	Language string `json:"language" validate:"omitempty,max=8"`
	Publish  bool   `json:"publish"`
}

// sessionEntry is a session on disk joined with its catalog record
type sessionEntry struct {
	session.Info
	Student       string `json:"student,omitempty"`
	Topic         string `json:"topic,omitempty"`
	PublishedPage string `json:"published_page,omitempty"`
	LastError     string `json:"last_error,omitempty"`
}

const settingsRule = "dive,keys,oneof=OPENAI_API_KEY OPENAI_MODEL_SUMMARY GEMINI_API_KEY NOTION_TOKEN NOTION_DATABASE_ID,endkeys,max=512"

func (s *implServer) listDevices(c *fiber.Ctx) error {
	devs, err := s.devices.List(c.UserContext())
	if err != nil {
		return respondWithError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return respondWithJSON(c, fiber.StatusOK, devs)
}

func (s *implServer) status(c *fiber.Ctx) error {
	return respondWithJSON(c, fiber.StatusOK, s.studio.Status())
}

func (s *implServer) startRecording(c *fiber.Ctx) error {
	req := new(startRecordingRequest)
	if err := c.BodyParser(req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Cannot parse recording JSON: "+err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid recording request",
			"errors":  formatValidationErrors(err),
		})
	}

	engine := req.Engine
	if engine == "" {
		engine = s.cfg.Transcribe.Engine
	}
	engine, err := config.NormalizeEngine(engine)
	if err != nil {
		return respondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	publish := req.Publish || s.cfg.Summary.Publish
	if err := s.cfg.RequireCredentials(engine, s.cfg.Summary.Provider, publish); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	devs, err := s.devices.List(c.UserContext())
	if err != nil {
		return respondWithError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	for _, idx := range []int{*req.MicIndex, *req.SysIndex} {
		if _, ok := devices.Find(devs, idx); !ok {
			return respondWithError(c, fiber.StatusBadRequest, "unknown audio device index "+strconv.Itoa(idx))
		}
	}

	st, err := s.studio.Start(c.UserContext(), studio.StartRequest{
		MicIndex: *req.MicIndex,
		SysIndex: *req.SysIndex,
		Student:  strings.TrimSpace(req.Student),
		Topic:    strings.TrimSpace(req.Topic),
		Engine:   engine,
		Language: req.Language,
		Publish:  publish,
	})
	if err != nil {
		if studio.IsConflict(err) {
			return respondWithError(c, fiber.StatusConflict, err.Error())
		}
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return respondWithJSON(c, fiber.StatusCreated, st)
}

func (s *implServer) stopRecording(c *fiber.Ctx) error {
	st, err := s.studio.Stop(c.UserContext())
	if err != nil {
		if studio.IsConflict(err) {
			return respondWithError(c, fiber.StatusConflict, err.Error())
		}
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return respondWithJSON(c, fiber.StatusAccepted, st)
}

func (s *implServer) listSessions(c *fiber.Ctx) error {
	infos, err := session.Scan(s.cfg.Paths.Sessions)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	records := map[string]catalog.Record{}
	if s.catalog != nil {
		recs, err := s.catalog.List(c.UserContext(), 0)
		if err != nil {
			s.logger.Warn(c.UserContext(), "Catalog list failed: %v", err)
		}
		for _, r := range recs {
			records[r.Name] = r
		}
	}

	out := make([]sessionEntry, 0, len(infos))
	for _, info := range infos {
		e := sessionEntry{Info: info}
		if r, ok := records[info.Name]; ok {
			e.Student = r.Student
			e.Topic = r.Topic
			e.PublishedPage = r.PublishedPage
			e.LastError = r.LastError
		}
		out = append(out, e)
	}
	return respondWithJSON(c, fiber.StatusOK, out)
}

func (s *implServer) sessionArtifact(c *fiber.Ctx) error {
	sess, err := session.Lookup(s.cfg.Paths.Sessions, c.Params("name"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return respondWithError(c, fiber.StatusNotFound, err.Error())
		}
		return respondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	var path, contentType string
	switch c.Params("artifact") {
	case "audio":
		path, contentType = sess.AudioPath(), "audio/wav"
	case "transcript":
		path, contentType = sess.TranscriptPath(), "text/plain; charset=utf-8"
	case "summary":
		path, contentType = sess.SummaryPath(), "text/markdown; charset=utf-8"
	default:
		return respondWithError(c, fiber.StatusBadRequest, "artifact must be audio, transcript or summary")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return respondWithError(c, fiber.StatusNotFound, filepath.Base(path)+" has not been produced yet")
		}
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}

func (s *implServer) getSettings(c *fiber.Ctx) error {
	out := make(map[string]string, len(config.SettingsKeys))
	for key, value := range s.cfg.Settings() {
		if config.SecretKeys[key] {
			value = config.Mask(value)
		}
		out[key] = value
	}
	return respondWithJSON(c, fiber.StatusOK, fiber.Map{
		"settings": out,
		"env_file": s.cfg.Paths.EnvFile,
	})
}

func (s *implServer) putSettings(c *fiber.Ctx) error {
	if s.studio.Busy() {
		return respondWithError(c, fiber.StatusConflict, "settings cannot change while a lesson is recording or processing")
	}

	body := map[string]string{}
	if err := c.BodyParser(&body); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Cannot parse settings JSON: "+err.Error())
	}
	if err := s.validate.Var(body, settingsRule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid settings",
			"errors":  formatValidationErrors(err),
		})
	}

	// a masked value sent back unchanged keeps the stored secret
	current := s.cfg.Settings()
	updates := make(map[string]string, len(body))
	for key, value := range body {
		if config.SecretKeys[key] && value == config.Mask(current[key]) {
			continue
		}
		updates[key] = value
	}

	if err := config.SaveEnv(s.cfg.Paths.EnvFile, updates); err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	// running components pick up the values as stored in the env file
	saved, err := config.ReadEnv(s.cfg.Paths.EnvFile)
	if err != nil {
		return respondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	applied := make(map[string]string, len(updates))
	for key := range updates {
		applied[key] = saved[key]
	}
	s.cfg.ApplySettings(applied)
	s.logger.Info(c.UserContext(), "Saved %d settings to %s", len(updates), s.cfg.Paths.EnvFile)

	return s.getSettings(c)
}
