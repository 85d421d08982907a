package server

import (
	"html/template"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// objectsPageTemplate is the one templated response this runtime renders
// itself; every other static handler is left to the embedding program via
// Server.Handle. html/template is standard library — no third-party
// templating engine appears anywhere in the retrieval pack, so this is the
// one ambient concern left unwired to a third-party dependency (see
// DESIGN.md).
var objectsPageTemplate = template.Must(template.New("objects").Parse(`<!DOCTYPE html>
<html><head><title>registered objects</title></head>
<body>
<h1>Registered objects</h1>
<ul>
{{range .}}<li>{{.}}</li>
{{end}}
</ul>
</body></html>
`))

// registerDebugRoutes mounts the introspection surface from the
// Supplemented Features: a human-readable object list and a Prometheus
// scrape endpoint.
func (s *Server) registerDebugRoutes() {
	s.Handle("/debug/objects", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := s.registry.Keys()
		sort.Strings(ids)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = objectsPageTemplate.Execute(w, ids)
	}))

	s.Handle("/debug/metrics", promhttp.Handler())
}
