package store

import (
	"crypto/rand"
	"encoding/base32"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random UUID. If the system random source fails it falls back
// to id-<base36 millis>-<8 base32 chars>, which is still unique enough for a
// personal checklist.
func NewID() string {
	if u, err := uuid.NewRandom(); err == nil {
		return u.String()
	}
	var b [5]byte // 40 bits -> 8 base32 chars
	_, _ = rand.Read(b[:])
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return "id-" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + suffix
}
