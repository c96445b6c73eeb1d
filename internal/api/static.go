package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/svsu-dev/samadhan/internal/pkg/httputil"
)

// spaHandler serves the built front end. Real files (scripts, styles, the
// service worker) are served as-is and the root serves the shell; the portal
// routes client-side with fragments, so any other path is an unknown API
// route and gets the JSON 404.
func spaHandler(staticDir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			httputil.NotFound(w)
			return
		}

		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		path := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			// The service worker must be served from the root scope with
			// its own content type to control the whole portal.
			if strings.HasSuffix(r.URL.Path, "service-worker.js") {
				w.Header().Set("Content-Type", "application/javascript")
				w.Header().Set("Service-Worker-Allowed", "/")
			}
			fs.ServeHTTP(w, r)
			return
		}

		httputil.NotFound(w)
	}
}
