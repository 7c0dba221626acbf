package publish

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"home-cli/internal/store"

	"github.com/charmbracelet/glamour"
)

var (
	rendererMu sync.Mutex
	// Keyed by style + wrap width. A fixed standard style avoids the terminal
	// background query WithAutoStyle performs.
	renderers = map[string]*glamour.TermRenderer{}
)

// StyleFromEnv picks a glamour standard style: HOME_MD_STYLE if set,
// "notty" when NO_COLOR is set, otherwise "dark".
func StyleFromEnv() string {
	if s := strings.TrimSpace(os.Getenv("HOME_MD_STYLE")); s != "" {
		return s
	}
	if os.Getenv("NO_COLOR") != "" {
		return "notty"
	}
	return "dark"
}

// Render styles md for a terminal of the given width. On renderer failure it
// returns md unchanged.
func Render(md string, width int, style string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = StyleFromEnv()
	}

	key := style + ":" + strconv.Itoa(width)
	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// WriteFile saves md to path atomically. Existing files are kept unless
// overwrite is set.
func WriteFile(path, md string, overwrite bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("missing output path")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return store.WriteFileAtomic(path, []byte(md))
}
