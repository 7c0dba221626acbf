package format

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes a strict EDN subset: maps with keyword keys, vectors,
// strings, integers, floats, booleans and nil.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	var b strings.Builder
	e := ednWriter{b: &b, pretty: pretty}
	e.value(x, 0)
	b.WriteByte('\n')
	_, err = io.WriteString(w, b.String())
	return err
}

type ednWriter struct {
	b      *strings.Builder
	pretty bool
}

func (e ednWriter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		e.b.WriteString("nil")
	case bool:
		e.b.WriteString(strconv.FormatBool(t))
	case string:
		e.b.WriteString(strconv.Quote(t))
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			e.b.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			e.b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		}
	case []any:
		e.seq('[', ']', len(t), depth, func(i int) { e.value(t[i], depth+1) })
	case map[string]any:
		ks := make([]string, 0, len(t))
		for k := range t {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		e.seq('{', '}', len(ks), depth, func(i int) {
			e.b.WriteString(Keyword(ks[i]))
			e.b.WriteByte(' ')
			e.value(t[ks[i]], depth+1)
		})
	default:
		e.b.WriteString(strconv.Quote(fmt.Sprint(t)))
	}
}

func (e ednWriter) seq(open, close byte, n, depth int, item func(int)) {
	e.b.WriteByte(open)
	if n == 0 {
		e.b.WriteByte(close)
		return
	}
	pad := strings.Repeat("  ", depth+1)
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			e.b.WriteByte('\n')
			e.b.WriteString(pad)
		case i > 0:
			e.b.WriteByte(' ')
		}
		item(i)
	}
	if e.pretty {
		e.b.WriteByte('\n')
		e.b.WriteString(strings.Repeat("  ", depth))
	}
	e.b.WriteByte(close)
}

var keywordUnsafe = regexp.MustCompile(`[^A-Za-z0-9*+!_?<>=./-]+`)

// Keyword turns a JSON field name into an EDN keyword: "archivedAt" -> :archivedAt.
func Keyword(name string) string {
	k := keywordUnsafe.ReplaceAllString(strings.TrimSpace(name), "-")
	if k == "" {
		k = "_"
	}
	return ":" + k
}
