package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"crypto-trading-bot/internal/tradelog"

	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	dateFlag := flag.String("date", "", "report date as YYYY-MM-DD (default: today UTC)")
	flag.Parse()

	date := time.Now().UTC()
	if *dateFlag != "" {
		d, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *dateFlag, err)
			os.Exit(1)
		}
		date = d
	}

	decisions, err := tradelog.ReadDecisions(date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read decisions: %v\n", err)
		os.Exit(1)
	}
	closes, err := tradelog.ReadCloses(date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read closes: %v\n", err)
		os.Exit(1)
	}

	renderDecisions(date, decisions)
	renderCloses(date, closes)
}

func renderDecisions(date time.Time, entries []tradelog.DecisionEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("DECISIONS %s", date.Format("2006-01-02"))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Symbol", "Action", "Conf", "Entry", "Target", "Stop", "R:R"})

	for _, e := range entries {
		t.AppendRow(table.Row{
			shortTime(e.Time),
			e.Symbol,
			e.Action,
			fmt.Sprintf("%.2f", e.Confidence),
			fmt.Sprintf("%.2f", e.EntryPrice),
			fmt.Sprintf("%.2f", e.TargetPrice),
			fmt.Sprintf("%.2f", e.StopLoss),
			fmt.Sprintf("%.2f", e.RiskReward),
		})
	}
	if len(entries) == 0 {
		t.AppendRow(table.Row{"-", "no decisions recorded", "-", "-", "-", "-", "-", "-"})
	}

	t.Render()
	fmt.Println()
}

func renderCloses(date time.Time, entries []tradelog.CloseEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("CLOSED POSITIONS %s", date.Format("2006-01-02"))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Symbol", "Side", "Reason", "Entry", "Exit", "PnL", "PnL %"})

	var totalPnL float64
	for _, e := range entries {
		totalPnL += e.PnL
		t.AppendRow(table.Row{
			shortTime(e.Time),
			e.Symbol,
			e.Side,
			e.Reason,
			fmt.Sprintf("%.2f", e.EntryPrice),
			fmt.Sprintf("%.2f", e.ExitPrice),
			fmt.Sprintf("%.2f", e.PnL),
			fmt.Sprintf("%.2f%%", e.PnLPct*100),
		})
	}
	if len(entries) == 0 {
		t.AppendRow(table.Row{"-", "no positions closed", "-", "-", "-", "-", "-", "-"})
	} else {
		t.AppendSeparator()
		t.AppendRow(table.Row{"", "", "", "TOTAL", "", "", fmt.Sprintf("%.2f", totalPnL), ""})
	}

	t.Render()
}

// shortTime trims a logged timestamp down to HH:MM:SS for display.
func shortTime(s string) string {
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts.Format("15:04:05")
	}
	return s
}
