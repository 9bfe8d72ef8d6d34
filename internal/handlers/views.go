package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"finance/internal/apperr"
	"finance/internal/money"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "buy", "sell", "quote", "quoted", "history", "login", "register", "apology"}

var funcs = template.FuncMap{
	"usd":   money.FormatUSD,
	"upper": strings.ToUpper,
	"when": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04:05")
	},
}

type pageData struct {
	LoggedIn bool
	Flash    string
	Data     any
}

type apologyData struct {
	Status  int
	Message string
}

// views holds one template set per page so every page can define its own
// "title" and "main" blocks.
type views map[string]*template.Template

func loadViews() (views, error) {
	v := make(views, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		v[page] = tmpl
	}
	return v, nil
}

func mustLoadViews() views {
	v, err := loadViews()
	if err != nil {
		panic(err)
	}
	return v
}

func (v views) render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := v[page]
	if !ok {
		log.Error().Str("page", page).Msg("unknown page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// apology renders err with the status its kind maps to. Internal errors are
// logged and shown with a generic message.
func (v views) apology(w http.ResponseWriter, r *http.Request, loggedIn bool, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	v.apologyStatus(w, loggedIn, status, apperr.Message(err))
}

func (v views) apologyStatus(w http.ResponseWriter, loggedIn bool, status int, message string) {
	v.render(w, status, "apology", pageData{
		LoggedIn: loggedIn,
		Data:     apologyData{Status: status, Message: message},
	})
}
