package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Nuevo laboratorio</title>
  <meta property="og:image" content="/media/lab.jpg">
</head>
<body>
  <nav>Inicio | Noticias</nav>
  <article>
    <h1>Nuevo laboratorio de robótica</h1>
    <p>La universidad inauguró un laboratorio de robótica abierto a estudiantes de todas las carreras.</p>
    <p>El espacio cuenta con impresoras 3D, brazos robóticos y estaciones de trabajo para proyectos interdisciplinarios.</p>
    <p>Las inscripciones para los talleres de marzo ya están disponibles en el portal de la facultad.</p>
  </article>
</body>
</html>`

func TestFetchExtractsImageAndText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	page, err := NewPageFetcher(time.Second, nil).Fetch(context.Background(), server.URL+"/noticias/lab")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.ImageURL != server.URL+"/media/lab.jpg" {
		t.Fatalf("unexpected image %q", page.ImageURL)
	}
	if !strings.Contains(page.Text, "impresoras 3D") {
		t.Fatalf("article text missing: %q", page.Text)
	}
}

func TestFetchNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if _, err := NewPageFetcher(time.Second, nil).Fetch(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error on 404")
	}
	if _, err := NewPageFetcher(time.Second, nil).Fetch(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected error on invalid url")
	}
}
