package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"torrenter/internal/logx"
)

// SetupLogging routes the diagnostic log to LOG_FILE and, when verbose, stderr.
// Stdout belongs to the interactive UI and never receives log lines.
func SetupLogging() {
	var outs []io.Writer
	if Verbose() {
		outs = append(outs, os.Stderr)
	}
	if p := LogFilePath(); p != "" {
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("WARN opening LOG_FILE=%q: %v", p, err)
		} else {
			outs = append(outs, f)
		}
	}

	log.SetFlags(log.LstdFlags)
	log.SetPrefix("")

	if len(outs) == 0 {
		log.SetOutput(io.Discard)
		return
	}
	filter := logx.New(io.MultiWriter(outs...), LogDedupWindow(), LogAllowRegex(), LogDenyRegex())
	log.SetOutput(filter)
	log.Printf("[init] logging configured (dedup=%s allow=%q deny=%q)", LogDedupWindow(), LogAllowRegex(), LogDenyRegex())
}
