package element

import (
	"fmt"

	"github.com/oskarb/docmend/internal/apperr"
	"github.com/oskarb/docmend/internal/docx"
)

// Replace overwrites the textual content of a located node, dispatching on
// its capability: run holders have their runs cleared and replaced by a
// single unformatted run; plain text bearers are overwritten directly.
// Unrecognized kinds report apperr.ErrUnsupportedNode; they are never
// guessed at. Any failure while writing, including a panic from the
// underlying tree, is caught here and returned as an error so one bad node
// never aborts a batch.
func Replace(node docx.Node, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("element: replace content: %v", r)
		}
	}()

	switch n := node.(type) {
	case docx.RunHolder:
		if err := n.ReplaceRuns(text); err != nil {
			return fmt.Errorf("element: replace runs: %w", err)
		}
	case docx.TextSetter:
		if err := n.SetText(text); err != nil {
			return fmt.Errorf("element: set text: %w", err)
		}
	default:
		return apperr.ErrUnsupportedNode
	}
	return nil
}
