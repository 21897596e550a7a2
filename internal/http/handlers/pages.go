package handlers

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"videogenhost/internal/middleware"
)

const sessionTTL = 24 * time.Hour

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><body>
<form action="/login" method="post">
  Username: <input name="username" type="text"/><br/>
  Password: <input name="password" type="password"/><br/>
  <input type="submit" value="Login"/>
</form>
{{if .Failed}}<p>Login failed. <a href="/login">Try again</a></p>{{end}}
</body></html>`))

var homePage = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html><body>
<p>Logged in as {{.User}}. <a href="/logout">Logout</a></p>
<form id="generate">
  <input name="prompt" type="text" size="80" placeholder="Describe the video"/>
  <input type="submit" value="Generate"/>
</form>
{{if .Videos}}<ul>{{range .Videos}}<li><a href="/player/{{.}}">{{.}}</a></li>{{end}}</ul>
{{else}}<p>No videos generated yet</p>{{end}}
<script>
document.getElementById("generate").addEventListener("submit", async (e) => {
  e.preventDefault();
  const prompt = new FormData(e.target).get("prompt");
  const resp = await fetch("/api/generate", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({prompt}),
  });
  const body = await resp.json();
  alert("Job queued: " + body.job_id);
});
</script>
</body></html>`))

var playerPage = template.Must(template.New("player").Parse(`<!DOCTYPE html>
<html><body>
<video controls autoplay width="624">
  <source src="{{.VideoURL}}"/>
</video>
</body></html>`))

// Home lists the generated videos for the logged-in user.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	videos, err := a.Store.List()
	if err != nil {
		a.Logger.Error().Err(err).Msg("pages: list videos failed")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = homePage.Execute(w, map[string]any{"User": user, "Videos": videos})
}

// LoginForm renders the login page.
func (a *App) LoginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginPage.Execute(w, map[string]any{"Failed": false})
}

// Login checks the posted credentials and issues a session cookie.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if expected, ok := a.Users[username]; !ok || expected != password {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_ = loginPage.Execute(w, map[string]any{"Failed": true})
		return
	}
	middleware.SetSessionCookie(w, a.CookieSecret, username, sessionTTL)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session cookie.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Player renders the seekable video player for one file.
func (a *App) Player(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	f, _, err := a.Store.Open(filename)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "video not found")
		return
	}
	f.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = playerPage.Execute(w, map[string]any{"VideoURL": "/video/" + filename})
}
