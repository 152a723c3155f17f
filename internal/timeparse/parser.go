package timeparse

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Parser finds an instant in free text relative to base. Naive clock times
// are interpreted in base's location.
type Parser interface {
	Parse(text string, base time.Time) (time.Time, bool, error)
}

// WhenParser is the English natural-language parser.
type WhenParser struct {
	w *when.Parser
}

// NewWhenParser returns a parser that understands expressions such as
// "at 3pm", "tomorrow 10am" or "in 20 minutes".
func NewWhenParser() *WhenParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{w: w}
}

// Parse implements Parser.
func (p *WhenParser) Parse(text string, base time.Time) (time.Time, bool, error) {
	result, err := p.w.Parse(text, base)
	if err != nil {
		return time.Time{}, false, err
	}
	if result == nil {
		return time.Time{}, false, nil
	}
	return result.Time, true, nil
}
