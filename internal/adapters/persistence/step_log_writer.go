package persistence

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/andrescamacho/colony-go/internal/application/common"
)

var levelColors = map[string]*color.Color{
	common.LevelDebug:   color.New(color.FgHiBlack),
	common.LevelInfo:    color.New(color.FgCyan),
	common.LevelWarning: color.New(color.FgYellow),
	common.LevelError:   color.New(color.FgRed, color.Bold),
}

// StepLogWriter is the production common.StepLogger: it prints each entry and
// persists it through the step log repository
type StepLogWriter struct {
	repo     *GormStepLogRepository
	out      io.Writer
	minLevel string
	siteID   string
}

// NewStepLogWriter creates a writer for siteID. Entries below minLevel are
// dropped. A nil repo only prints; a nil out only persists.
func NewStepLogWriter(repo *GormStepLogRepository, out io.Writer, minLevel, siteID string) *StepLogWriter {
	return &StepLogWriter{
		repo:     repo,
		out:      out,
		minLevel: strings.ToUpper(minLevel),
		siteID:   siteID,
	}
}

// Log implements common.StepLogger
func (w *StepLogWriter) Log(level, message string, metadata map[string]interface{}) {
	if common.LevelRank(level) < common.LevelRank(w.minLevel) {
		return
	}

	siteID := w.siteID
	if v, ok := metadata["site_id"].(string); ok && v != "" {
		siteID = v
	}

	if w.repo != nil {
		// Printed below even when the store drops a repeat
		if _, err := w.repo.Log(context.Background(), siteID, level, message, metadata); err != nil && w.out != nil {
			fmt.Fprintf(w.out, "[%s] [%s] step log not persisted: %v\n", levelTag(common.LevelError), siteID, err)
		}
	}

	if w.out != nil {
		fmt.Fprintf(w.out, "[%s] [%s] %s%s\n", levelTag(level), siteID, message, formatMetadata(metadata))
	}
}

// levelTag colours level unless color.NoColor is set
func levelTag(level string) string {
	if c, ok := levelColors[level]; ok {
		return c.Sprint(level)
	}
	return level
}

// formatMetadata renders metadata as sorted key=value pairs
func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k != "site_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}
