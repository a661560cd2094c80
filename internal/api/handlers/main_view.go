package handlers

import "net/http"

// Main - стартовая страница, без данных
func (v *Views) Main(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusOK, "main.html", pageData{
		Title:  "Inicio",
		Active: "main",
	})
}
