package server

import (
	"errors"
	"html/template"
	"net/http"

	"newsdesk/internal/model"
	"newsdesk/internal/news"
	"newsdesk/internal/present"

	"go.uber.org/zap"
)

func parsePages() map[string]*template.Template {
	return map[string]*template.Template{
		"index": template.Must(template.ParseFS(templateFS,
			"templates/layout.html", "templates/index.html", "templates/partials/card.html")),
		"view": template.Must(template.ParseFS(templateFS,
			"templates/layout.html", "templates/view.html")),
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Template error",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("page", page),
			zap.Error(err),
		)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	filter := model.ListFilter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	articles, err := s.articles.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list articles", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	categories, err := s.articles.Categories(r.Context())
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	now := s.now()
	cards := make([]present.Card, len(articles))
	for i, a := range articles {
		cards[i] = present.NewCard(a, nil, now)
	}

	s.render(w, r, http.StatusOK, "index", struct {
		Title      string
		Query      string
		Category   string
		Categories []string
		Cards      []present.Card
	}{
		Title:      "Latest news",
		Query:      filter.Query,
		Category:   filter.Category,
		Categories: categories,
		Cards:      cards,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	article, err := s.articles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("Failed to load article", zap.Int64("id", id), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// The body is stored HTML and rendered as-is.
	s.render(w, r, http.StatusOK, "view", struct {
		Title string
		Card  present.Card
		Body  template.HTML
	}{
		Title: article.Title,
		Card:  present.NewCard(*article, nil, s.now()),
		Body:  template.HTML(article.Body),
	})
}
