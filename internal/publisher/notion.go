package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// maxChildren is the most blocks Notion accepts in one request
const maxChildren = 100

// Publish creates the page with the first batch of blocks and appends the rest
func (n *implNotion) Publish(ctx context.Context, page Page) (string, error) {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = "Lesson notes"
	}

	blocks := Blocks(page.Markdown)
	first := blocks
	if len(first) > maxChildren {
		first = blocks[:maxChildren]
	}

	n.logger.Info(ctx, "Publishing %q to Notion (%d blocks)", title, len(blocks))

	created, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: n.databaseID,
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: []notionapi.RichText{textRun(title)},
			},
		},
		Children: first,
	})
	if err != nil {
		return "", &Error{Target: targetNotion, Err: fmt.Errorf("create page: %w", err)}
	}
	pageID := created.ID.String()

	for i := maxChildren; i < len(blocks); i += maxChildren {
		end := min(i+maxChildren, len(blocks))
		_, err := n.client.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
			Children: blocks[i:end],
		})
		if err != nil {
			return pageID, &Error{Target: targetNotion, Err: fmt.Errorf("append blocks %d-%d to %s: %w", i, end, pageID, err)}
		}
	}

	n.logger.Info(ctx, "Published to Notion, page id %s", pageID)
	return pageID, nil
}
