package middleware

import (
	"bytes"
	"strconv"
	"strings"

	"devreload/internal/assets"

	"github.com/gin-gonic/gin"
)

var closingBody = []byte("</body>")

// bufferedWriter holds the response back so the body can be rewritten.
type bufferedWriter struct {
	gin.ResponseWriter
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	w.status = code
	w.wroteHeader = true
}

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.body.Len() > 0
}

// InjectReloadScript adds the reload client to HTML pages served on paths.
// A path ending in "/*" matches everything below it. The script goes in
// front of the last </body>; pages without one are left alone.
func InjectReloadScript(paths ...string) gin.HandlerFunc {
	script := assets.ReloadScriptTag()
	return func(c *gin.Context) {
		if !matchPath(c.Request.URL.Path, paths) {
			c.Next()
			return
		}

		original := c.Writer
		buf := &bufferedWriter{ResponseWriter: original, status: original.Status()}
		c.Writer = buf
		c.Next()
		c.Writer = original

		// Nothing produced: leave the response to gin, which fills in its
		// own 404/405 body for unmatched routes.
		if !buf.wroteHeader && buf.body.Len() == 0 {
			return
		}

		body := buf.body.Bytes()
		header := original.Header()
		if strings.Contains(header.Get("Content-Type"), "text/html") {
			if injected, ok := injectBefore(body, closingBody, script); ok {
				body = injected
				header.Set("Content-Length", strconv.Itoa(len(body)))
			}
		}

		original.WriteHeader(buf.status)
		if len(body) > 0 {
			_, _ = original.Write(body)
		} else {
			original.WriteHeaderNow()
		}
	}
}

func matchPath(path string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func injectBefore(body, marker, insert []byte) ([]byte, bool) {
	idx := bytes.LastIndex(body, marker)
	if idx < 0 {
		return body, false
	}
	out := make([]byte, 0, len(body)+len(insert))
	out = append(out, body[:idx]...)
	out = append(out, insert...)
	out = append(out, body[idx:]...)
	return out, true
}
