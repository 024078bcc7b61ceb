package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
)

const (
	nameWidth    = 24
	kindWidth    = 5
	addressWidth = 28
	verdictWidth = 16
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.FgHiBlack)
)

func logSectionTitle(w io.Writer, f log.Fields) error {
	colWidth := 24

	title := fmt.Sprint(f.Get("title"))
	fmt.Fprint(w, "┏"+strings.Repeat("━", colWidth+2)+"┓\n")
	fmt.Fprintf(w, "┃ %s ┃\n", RightPad(title, colWidth))
	fmt.Fprint(w, "┗"+strings.Repeat("━", colWidth+2)+"┛\n")
	return nil
}

func logTargetResult(w io.Writer, f log.Fields) error {
	passed, _ := f.Get("passed").(bool)
	mark, paint := "✓", passColor
	if !passed {
		mark, paint = "✗", failColor
	}
	row := fmt.Sprintf(" %s %s %s %s %s",
		paint.Sprint(mark),
		RightPad(fmt.Sprint(f.Get("name")), nameWidth),
		RightPad(fmt.Sprint(f.Get("kind")), kindWidth),
		RightPad(fmt.Sprint(f.Get("address")), addressWidth),
		RightPad(paint.Sprint(f.Get("verdict")), verdictWidth),
	)
	if failure, _ := f.Get("failure").(string); failure != "" {
		row += " " + dimColor.Sprint(failure)
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(row, " "))
	return err
}

func logScanSummary(w io.Writer, f log.Fields) error {
	checked, _ := f.Get("checked").(int)
	failed, _ := f.Get("failed").(int)
	skipped, _ := f.Get("skipped").(int)
	duration, _ := f.Get("duration").(float64)

	if total, _ := f.Get("total").(int); total == 0 {
		fmt.Fprintf(w, "No targets\n")
		return nil
	}

	paint := passColor
	if failed > 0 {
		paint = failColor
	}
	elapsed := time.Duration(duration * float64(time.Second)).Round(time.Millisecond)
	line := fmt.Sprintf("%d checked, %s", checked, paint.Sprintf("%d failed", failed))
	if skipped > 0 {
		line += fmt.Sprintf(", %d skipped", skipped)
	}
	line += fmt.Sprintf(" in %s", elapsed)
	if interrupted, _ := f.Get("interrupted").(bool); interrupted {
		line += " " + failColor.Sprint("(interrupted)")
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
