package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"crypto-trading-bot/internal/types"
)

var mu sync.Mutex

// DecisionEntry records one consensus outcome for later review.
type DecisionEntry struct {
	Time        string   `json:"time"`
	Symbol      string   `json:"symbol"`
	Action      string   `json:"action"` // LONG, SHORT or ABSTAIN
	Confidence  float64  `json:"confidence"`
	EntryPrice  float64  `json:"entry_price,omitempty"`
	TargetPrice float64  `json:"target_price,omitempty"`
	StopLoss    float64  `json:"stop_loss,omitempty"`
	RiskReward  float64  `json:"risk_reward,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	RiskFactors []string `json:"risk_factors,omitempty"`
}

// CloseEntry records one closed position.
type CloseEntry struct {
	Time       string  `json:"time"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Reason     string  `json:"reason"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Size       float64 `json:"size"`
	PnL        float64 `json:"pnl"`
	PnLPct     float64 `json:"pnl_pct"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func decisionsFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "decisions", d+".txt")
}

func closesFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "closes", d+".txt")
}

// AppendDecision appends a consensus outcome to today's decision log.
func AppendDecision(e DecisionEntry) error {
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendJSON(decisionsFilepath(now), e)
}

// AppendClose appends a closed position to today's close log.
func AppendClose(pos types.Position, reason types.ExitReason) error {
	now := time.Now().UTC()
	return appendJSON(closesFilepath(now), CloseEntry{
		Time:       now.Format("2006-01-02 15:04:05"),
		Symbol:     pos.Symbol,
		Side:       string(pos.Side),
		Reason:     string(reason),
		EntryPrice: pos.EntryPrice,
		ExitPrice:  pos.CurrentPrice,
		Size:       pos.Size,
		PnL:        pos.PnL,
		PnLPct:     pos.PnLPct,
	})
}

func appendJSON(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDecisions loads the decision entries for a single UTC date.
func ReadDecisions(date time.Time) ([]DecisionEntry, error) {
	var out []DecisionEntry
	err := readJSONLines(decisionsFilepath(date), func(line []byte) error {
		var e DecisionEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

// ReadCloses loads the close entries for a single UTC date.
func ReadCloses(date time.Time) ([]CloseEntry, error) {
	var out []CloseEntry
	err := readJSONLines(closesFilepath(date), func(line []byte) error {
		var e CloseEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func readJSONLines(path string, fn func([]byte) error) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	start := 0
	for i := 0; i <= len(b); i++ {
		if i == len(b) || b[i] == '\n' {
			line := b[start:i]
			start = i + 1
			if len(line) == 0 {
				continue
			}
			if err := fn(line); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompressOlder gzips log files older than the retention window.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			// if already gz exists, remove original .txt
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
