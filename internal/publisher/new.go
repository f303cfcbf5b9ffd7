package publisher

import (
	"github.com/jomei/notionapi"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
)

const targetNotion = "notion"

type implNotion struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	logger     logger.Logger
}

// NewNotion creates a Publisher that adds pages to the configured Notion database.
// It fails with a config.CredentialError when the token or database id is missing.
func NewNotion(cfg *config.Config, log logger.Logger, opts ...notionapi.ClientOption) (Publisher, error) {
	if err := cfg.RequireNotion(); err != nil {
		return nil, err
	}
	n := cfg.Services().Notion

	return &implNotion{
		client:     notionapi.NewClient(notionapi.Token(n.Token), opts...),
		databaseID: notionapi.DatabaseID(n.DatabaseID),
		logger:     log,
	}, nil
}
