package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

func setNoColor(noColor bool) {
	color.NoColor = noColor
}

func printSuccess(w io.Writer, msg string, params ...any) {
	fmt.Fprintln(w, color.New(color.FgGreen).Sprintf(msg, params...))
}

func printInfo(w io.Writer, msg string, params ...any) {
	fmt.Fprintln(w, color.New(color.FgWhite).Sprintf(msg, params...))
}

func printWarning(w io.Writer, msg string, params ...any) {
	fmt.Fprintln(w, color.New(color.FgYellow).Sprintf(msg, params...))
}

func printErr(w io.Writer, err error) {
	var de *domainerrors.Error
	if domainerrors.As(err, &de) {
		fmt.Fprintln(w, color.New(color.FgRed).Sprintf("%s: %s", de.Code, de.Message))
		return
	}
	fmt.Fprintln(w, color.New(color.FgRed).Sprint(err.Error()))
}

// ago renders t relative to now, e.g. "3 minutes ago".
func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func parseEntityID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.Validationf("invalid entity id %q", s)
	}
	return id, nil
}
