package cli

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Цвета отключаются сами, если stdout не терминал или задан NO_COLOR
var (
	success   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warning   = color.New(color.FgYellow).SprintFunc()
	highlight = color.New(color.FgCyan).SprintFunc()
	muted     = color.New(color.Faint).SprintFunc()
)

// startSpinner показывает спиннер на время долгой операции (вывод ключа из PIN, запросы к серверу).
// Возвращает функцию остановки; вне терминала ничего не делает.
func (c *Cli) startSpinner(message string) func() {
	if !c.interactive || c.verbose {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.io))
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		c.logger.Debug("failed to set spinner color", "error", err)
	}
	s.Start()
	return s.Stop
}

// withSpinner выполняет fn под спиннером
func (c *Cli) withSpinner(message string, fn func() error) error {
	stop := c.startSpinner(message)
	defer stop()
	return fn()
}
