package logx

import (
	"io"
	"regexp"
	"strings"
	"sync"
	"time"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// Writer filters and de-duplicates log lines before they reach dst.
//   - allow (optional): only lines matching it pass
//   - deny  (optional): lines matching it are dropped
//   - window: identical lines seen within it are dropped
//
// Colour escapes are stripped so file logs stay readable and patterns match plain text.
type Writer struct {
	dst         io.Writer
	allow, deny *regexp.Regexp
	window      time.Duration
	mu          sync.Mutex
	lastSeen    map[string]time.Time
	dropped     int
}

func New(dst io.Writer, window time.Duration, allowPattern, denyPattern string) *Writer {
	return &Writer{
		dst:      dst,
		allow:    compile(allowPattern),
		deny:     compile(denyPattern),
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// compile is fail-soft: a bad pattern disables that filter.
func compile(p string) *regexp.Regexp {
	if strings.TrimSpace(p) == "" {
		return nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil
	}
	return re
}

func (w *Writer) Write(p []byte) (int, error) {
	line := ansiRE.ReplaceAllString(string(p), "")
	// log.LstdFlags puts the timestamp first; match on the message.
	msg := stripStamp(line)

	if w.deny != nil && w.deny.MatchString(msg) {
		w.drop()
		return len(p), nil
	}
	if w.allow != nil && !w.allow.MatchString(msg) {
		w.drop()
		return len(p), nil
	}

	key := strings.TrimRight(msg, "\r\n")
	now := time.Now()
	w.mu.Lock()
	if last, ok := w.lastSeen[key]; ok && now.Sub(last) < w.window {
		w.dropped++
		w.mu.Unlock()
		return len(p), nil
	}
	w.lastSeen[key] = now
	w.mu.Unlock()

	if _, err := io.WriteString(w.dst, line); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *Writer) drop() {
	w.mu.Lock()
	w.dropped++
	w.mu.Unlock()
}

// Dropped reports how many lines were filtered or de-duplicated.
func (w *Writer) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

var stampRE = regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(\.\d+)? `)

func stripStamp(s string) string { return stampRE.ReplaceAllString(s, "") }
