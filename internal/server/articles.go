package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"newsdesk/internal/model"
	"newsdesk/internal/news"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	msgNotFound = "News not found"
	msgDeleted  = "News deleted successfully"
	msgInternal = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps an error to its HTTP status. Only 500s are logged; their cause
// never reaches the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var bad *badRequest
	switch {
	case errors.As(err, &bad):
		writeError(w, http.StatusBadRequest, bad.msg)
	case errors.Is(err, news.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, news.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		s.logger.Error("Request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// articleID reads the {id} route variable. The route only matches digits,
// so anything that does not fit a positive int64 is reported as not found.
func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	articles, err := s.articles.List(r.Context(), model.ListFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	article, err := s.articles.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := parseArticleRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer req.close()

	article, err := s.articles.Create(r.Context(), req.input, req.image)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	req, err := parseArticleRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer req.close()

	article, err := s.articles.Update(r.Context(), id, req.input, req.image)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := s.articles.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgDeleted})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.articles.Categories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Request decoding

const maxFormMemory = 32 << 20

var articleFields = map[string]bool{
	"title":    true,
	"summary":  true,
	"content":  true,
	"body":     true,
	"category": true,
	"author":   true,
}

type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

type articleRequest struct {
	input model.Input
	image *news.Image
	close func()
}

// jsonArticle is the JSON form of a write. Non-string values fail decoding.
type jsonArticle struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Author   string `json:"author"`
}

// parseArticleRequest accepts multipart forms (with an optional "image"
// file), urlencoded forms and JSON objects. "content" takes precedence over
// "body". Unknown fields are rejected.
func parseArticleRequest(r *http.Request) (*articleRequest, error) {
	req := &articleRequest{close: func() {}}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, &badRequest{msg: "Unsupported content type"}
	}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, &badRequest{msg: "Malformed multipart body"}
		}
		form := r.MultipartForm
		req.close = func() { form.RemoveAll() }

		// Browsers send an empty file input as a part with filename="",
		// which lands among the plain values.
		if isBlank(form.Value["image"]) {
			delete(form.Value, "image")
		}
		if req.input, err = inputFromValues(form.Value); err != nil {
			req.close()
			return nil, err
		}
		for field, files := range form.File {
			if field != "image" {
				req.close()
				return nil, &badRequest{msg: "Unexpected file field " + strconv.Quote(field)}
			}
			if len(files) > 1 {
				req.close()
				return nil, &badRequest{msg: "Only one image may be uploaded"}
			}
		}
		if files := form.File["image"]; len(files) == 1 {
			f, err := files[0].Open()
			if err != nil {
				req.close()
				return nil, err
			}
			req.image = &news.Image{Filename: files[0].Filename, Reader: f}
			req.close = func() {
				f.Close()
				form.RemoveAll()
			}
		}

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, &badRequest{msg: "Malformed form body"}
		}
		if req.input, err = inputFromValues(r.PostForm); err != nil {
			return nil, err
		}

	case "application/json":
		var body jsonArticle
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && (typeErr.Field == "content" || typeErr.Field == "body") {
				return nil, news.Validate(model.Input{})
			}
			return nil, &badRequest{msg: "Malformed JSON body"}
		}
		req.input = model.Input{
			Title:    body.Title,
			Summary:  body.Summary,
			Body:     firstNonEmpty(body.Content, body.Body),
			Category: body.Category,
			Author:   body.Author,
		}

	default:
		return nil, &badRequest{msg: "Unsupported content type"}
	}

	if err := news.Validate(req.input); err != nil {
		req.close()
		return nil, err
	}
	return req, nil
}

func inputFromValues(values url.Values) (model.Input, error) {
	for field, v := range values {
		if !articleFields[field] {
			return model.Input{}, &badRequest{msg: "Unknown field " + strconv.Quote(field)}
		}
		if len(v) > 1 {
			return model.Input{}, &badRequest{msg: "Field " + strconv.Quote(field) + " given more than once"}
		}
	}

	return model.Input{
		Title:    values.Get("title"),
		Summary:  values.Get("summary"),
		Body:     firstNonEmpty(values.Get("content"), values.Get("body")),
		Category: values.Get("category"),
		Author:   values.Get("author"),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isBlank(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
