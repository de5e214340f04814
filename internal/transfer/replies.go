package transfer

import (
	"context"
	"fmt"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// Reply notes are placed just past the top-right corner of their parent's
// new region so they do not overlap the markup.
const (
	replyOffsetX = 5
	replyOffsetY = -2
)

// linkReplies is pass 2: every sticky note in src replying to a markup that
// was transferred in pass 1 is re-created next to the parent's new region.
// Notes whose parent was not transferred, and free-standing notes, are
// counted as unsupported. The transfer map is complete before this runs,
// so parent resolution does not depend on reply order.
func (s *Session) linkReplies(ctx context.Context, src, dst docmodel.Document) error {
	for pageIdx := 0; pageIdx < src.PageCount(); pageIdx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := src.Page(pageIdx)
		if err != nil {
			return fmt.Errorf("failed to load source page %d: %w", pageIdx+1, err)
		}
		annots, err := page.Annotations()
		if err != nil {
			return fmt.Errorf("failed to read annotations on page %d: %w", pageIdx+1, err)
		}

		for _, ann := range annots {
			if ann.Kind != docmodel.KindNote {
				continue
			}

			parent, ok := s.transferMap[ann.InReplyTo]
			if ann.InReplyTo == "" || !ok {
				s.counts.Unsupported++
				continue
			}

			dstPage, err := dst.Page(parent.PageIndex)
			if err != nil {
				return fmt.Errorf("failed to load target page %d: %w", parent.PageIndex+1, err)
			}

			tr := parent.Rect.TopRight()
			at := docmodel.Point{X: tr.X + replyOffsetX, Y: tr.Y + replyOffsetY}

			content := ann.Content
			if content == "" {
				content = "Reply"
			}
			title := ann.Title
			if title == "" {
				title = "Reply"
			}

			if _, err := dstPage.AddNote(at, parent.ID, docmodel.Info{Content: content, Title: title}); err != nil {
				return fmt.Errorf("failed to create reply on page %d: %w", parent.PageIndex+1, err)
			}

			s.counts.Replies++
			s.printer.ReplyOK(parent.PageIndex+1, content)
		}
	}
	return nil
}
