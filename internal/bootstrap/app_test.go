package bootstrap

import (
	"net/http"
	"testing"

	"github.com/locvowork/ltxbench/internal/handler"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	a := NewApp()
	a.RegisterRoutes(handler.NewLibraryHandler(nil), handler.NewTemplateHandler(nil))

	registered := map[string]bool{}
	for _, r := range a.Echo.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		http.MethodGet + " /library/readmes",
		http.MethodPost + " /library/readmes",
		http.MethodGet + " /library/readmes/:id",
		http.MethodPut + " /library/readmes/:id",
		http.MethodDelete + " /library/readmes/:id",
		http.MethodGet + " /library/metrics",
		http.MethodPost + " /library/metrics",
		http.MethodGet + " /organizations",
		http.MethodPost + " /organizations",
		http.MethodGet + " /organizations/:id/projects",
		http.MethodPost + " /projects",
		http.MethodPost + " /templates/generate",
		http.MethodPost + " /templates/batch",
	} {
		assert.True(t, registered[route], route)
	}
}
