package handlers

import (
	"fmt"
	"time"

	html "github.com/gofiber/template/html/v2"
)

// NewEngine loads the page templates with the helpers they use.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("money", func(v float64) string { return fmt.Sprintf("$%.2f", v) })
	engine.AddFunc("ago", func(ms int64) string {
		d := time.Since(time.UnixMilli(ms))
		switch {
		case d < time.Minute:
			return "just now"
		case d < time.Hour:
			return fmt.Sprintf("%dm ago", int(d.Minutes()))
		case d < 24*time.Hour:
			return fmt.Sprintf("%dh ago", int(d.Hours()))
		}
		return time.UnixMilli(ms).UTC().Format("Jan 2, 2006")
	})
	return engine
}
