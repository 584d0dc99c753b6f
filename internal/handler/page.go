package handler

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

// PageTemplate is the name of the wallet page template.
const PageTemplate = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded page templates into r.
func LoadTemplates(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
}
