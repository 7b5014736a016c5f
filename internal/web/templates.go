package web

import (
	"html/template"

	"cinestream/internal/catalog"
	"cinestream/internal/detail"
)

const cardPoster = "https://via.placeholder.com/300x400?text=Movie+Poster"

type templates struct {
	auth    *template.Template
	catalog *template.Template
	status  *template.Template
}

// parseTemplates builds the page templates. media resolves backend media
// references into absolute URLs.
func parseTemplates(media func(string) string) templates {
	funcs := template.FuncMap{
		"media": media,
		"poster": func(ref string) string {
			if u := media(ref); u != "" {
				return u
			}
			return cardPoster
		},
		"category":  catalog.DisplayName,
		"cardLabel": detail.CardLabel,
		"starRange": func() []int { return []int{1, 2, 3, 4, 5} },
	}
	return templates{
		auth:    template.Must(template.New("auth").Funcs(funcs).Parse(authPageHTML)),
		catalog: template.Must(template.New("catalog").Funcs(funcs).Parse(catalogPageHTML)),
		status:  template.Must(template.New("status").Parse(statusPageHTML)),
	}
}

const pageStyle = `<style>
  body { margin: 0; font-family: system-ui, sans-serif; background: #0b0b0f; color: #eee; }
  a { color: #f97316; }
  button { cursor: pointer; border: 0; border-radius: 6px; padding: 6px 12px; background: #f97316; color: #000; font-weight: 600; }
  button.ghost { background: #333; color: #eee; }
  nav { display: flex; gap: 16px; align-items: center; padding: 12px 24px; background: #111; }
  nav .spacer { flex: 1; }
  .notice { padding: 8px 24px; }
  .notice.success { background: #14532d; }
  .notice.error, .notice.alert { background: #7f1d1d; }
  .hero { position: relative; height: 360px; overflow: hidden; }
  .hero video { width: 100%; height: 100%; object-fit: cover; }
  .hero .caption { position: absolute; left: 24px; bottom: 24px; max-width: 50%; }
  .strip { display: flex; gap: 12px; overflow-x: hidden; padding: 12px 24px; }
  .row { display: flex; flex-wrap: wrap; gap: 12px; padding: 0 24px 12px; }
  .card { width: 180px; background: #18181b; border-radius: 8px; overflow: hidden; flex: none; }
  .card img { width: 100%; height: 240px; object-fit: cover; }
  .card .meta { padding: 6px 8px; font-size: 13px; }
  .card form { display: inline; }
  .overlay { position: fixed; inset: 0; background: rgba(0,0,0,.8); display: flex; align-items: center; justify-content: center; }
  .modal { background: #18181b; border-radius: 16px; padding: 20px; width: min(760px, 95%); max-height: 90vh; overflow-y: auto; }
  .stars { color: #facc15; font-size: 20px; }
  .gallery img { width: 80px; height: 80px; object-fit: cover; border-radius: 6px; }
  .fab { position: fixed; right: 24px; bottom: 24px; }
  .drop { border: 2px dashed #444; border-radius: 8px; padding: 8px; margin: 8px 0; }
  .drop.over { border-color: #f97316; }
  .drop .hint { margin: 4px 0 0; font-size: 12px; color: #999; }
</style>`

const authPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CineStream · {{if .Register}}Register{{else}}Login{{end}}</title>
` + pageStyle + `
</head>
<body>
<div class="overlay">
  <div class="modal" style="max-width:360px">
    <h2>{{if .Register}}Create an account{{else}}Welcome back{{end}}</h2>
    {{with .Alert}}<p class="notice alert" role="alert">{{.}}</p>{{end}}
    <form method="post" action="/auth">
      <input type="hidden" name="mode" value="{{.Mode}}">
      <p><label>Username<br><input name="username" value="{{.Username}}" required autocomplete="username"></label></p>
      <p><label>Password<br><input name="password" type="password" required autocomplete="current-password"></label></p>
      <button type="submit">{{if .Register}}🍿 Register{{else}}🎥 Login{{end}}</button>
    </form>
    <p>
      {{if .Register}}Already have an account?{{else}}New here?{{end}}
      <a href="/?mode={{.ToggleMode}}">{{if .Register}}Login{{else}}Register{{end}}</a>
    </p>
  </div>
</div>
</body>
</html>`

const statusPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{if .Refresh}}<meta http-equiv="refresh" content="1">{{end}}
<title>CineStream</title>
` + pageStyle + `
</head>
<body>
<h1 style="padding:24px">{{.Message}}</h1>
</body>
</html>`

const catalogPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CineStream</title>
` + pageStyle + `
</head>
<body>
<nav>
  <strong>🎬 CineStream</strong>
  {{range .Categories}}<a href="#cat-{{.}}">{{category .}}</a>{{end}}
  <span class="spacer"></span>
  <form method="post" action="/logout"><button class="ghost" type="submit">Logout</button></form>
</nav>

{{range .Notices}}<div class="notice {{.Level}}" role="status">{{.Text}}</div>{{end}}

{{with .Snap.Hero}}
<section class="hero" id="hero" data-index="{{$.Snap.HeroIndex}}" data-count="{{$.Snap.HeroCount}}">
  <video id="hero-video" src="{{media .Trailer}}" autoplay muted playsinline></video>
  <div class="caption">
    <h1 id="hero-title">{{.Title}}</h1>
    <p id="hero-description">{{.Description}}</p>
    <form id="hero-view" method="post" action="/movies/{{.ID}}/view"><button type="submit">▶ View Details</button></form>
  </div>
</section>
{{end}}

<h2 style="padding:0 24px">Latest</h2>
{{if .Snap.Latest}}
<div class="strip" id="latest-strip">
  {{range .Snap.Latest}}{{template "card" .}}{{end}}
</div>
{{else}}
<p style="padding:0 24px">No latest movies.</p>
{{end}}

{{if .Snap.Empty}}
<p style="padding:24px">Select a movie or click "Add Movie" to begin</p>
{{end}}

{{range .Snap.Groups}}
<section id="cat-{{.Name}}">
  <h2 style="padding:0 24px">{{.Title}}</h2>
  <div class="row">
    {{range .Movies}}{{template "card" .}}{{end}}
  </div>
  {{if .Collapsible}}
  <form method="post" action="/categories/toggle" style="padding:0 24px 24px">
    <input type="hidden" name="name" value="{{.Name}}">
    <button class="ghost" type="submit">{{if .Expanded}}View Less{{else}}View All{{end}}</button>
  </form>
  {{end}}
</section>
{{end}}

<form class="fab" method="post" action="/movies/new"><button type="submit">＋ Add Movie</button></form>

{{with .Snap.PendingDelete}}
<div class="overlay">
  <div class="modal" style="max-width:380px">
    <p>Are you sure you want to delete <strong>{{.Title}}</strong>?</p>
    <form method="post" action="/delete/confirm" style="display:inline"><button type="submit">Delete</button></form>
    <form method="post" action="/delete/cancel" style="display:inline"><button class="ghost" type="submit">Cancel</button></form>
  </div>
</div>
{{end}}

{{with .Detail}}
<div class="overlay">
  <div class="modal">
    <form method="post" action="/modal/close" style="float:right"><button class="ghost" type="submit">✕</button></form>
    {{if .ShowTrailer}}
    <video src="{{.Trailer}}" controls autoplay style="width:100%;max-height:320px"></video>
    {{else}}
    <img src="{{.Poster}}" alt="{{.Title}}" style="width:100%;max-height:320px;object-fit:cover">
    {{end}}
    <form method="post" action="/modal/trailer"><button type="submit">{{if .ShowTrailer}}Hide Trailer{{else}}Watch Trailer{{end}}</button></form>
    <h2>{{.Title}}</h2>
    {{with .Category}}<p>🎭 Category: {{category .}}</p>{{end}}
    <p>{{.Description}}</p>
    {{if .Gallery}}<div class="gallery">{{range $i, $g := .Gallery}}<img src="{{$g}}" alt="Still {{$i}}">{{end}}</div>{{end}}
    <div class="stars">{{range .Stars}}{{if .}}★{{else}}☆{{end}}{{end}}</div>
    <p>{{.RatingLabel}}</p>
    <h3>Rate this Movie</h3>
    {{range starRange}}
    <form method="post" action="/modal/rate" style="display:inline">
      <input type="hidden" name="stars" value="{{.}}">
      <button class="ghost" type="submit" aria-label="{{.}} stars">★</button>
    </form>
    {{end}}
  </div>
</div>
{{end}}

{{with .Form}}
<div class="overlay">
  <div class="modal" style="max-width:480px">
    <form method="post" action="/modal/close" style="float:right"><button class="ghost" type="submit">✕</button></form>
    <h2>{{if .Editing}}✏️ Edit Movie{{else}}🎬 Create New Movie{{end}}</h2>
    <form method="post" action="/modal/save" enctype="multipart/form-data">
      <p><label>Title<br><input name="title" value="{{.Fields.Title}}" required></label></p>
      <p><label>Description<br><textarea name="description" rows="4" required>{{.Fields.Description}}</textarea></label></p>
      <p><label>Category<br>
        <select name="category" required>
          <option value="">Select category</option>
          {{$current := .Fields.Category}}
          {{range .Categories}}<option value="{{.}}"{{if eq . $current}} selected{{end}}>{{category .}}</option>{{end}}
        </select>
      </label></p>
      <p><label><input type="checkbox" name="is_latest" value="true"{{if .Fields.IsLatest}} checked{{end}}> Mark as latest</label></p>
      <div class="drop" data-accept="image/" data-input="form-image">
        <label>Poster<br><input id="form-image" type="file" name="image" accept="image/*"></label>{{with .Image}} <small>{{.}}</small>{{end}}
        <p class="hint">or drop an image here</p>
      </div>
      <div class="drop" data-accept="video/" data-input="form-trailer">
        <label>Trailer<br><input id="form-trailer" type="file" name="trailer" accept="video/*"></label>{{with .Trailer}} <small>{{.}}</small>{{end}}
        <p class="hint">or drop a video here</p>
      </div>
      <button type="submit">{{if .Editing}}Update Movie{{else}}Create Movie{{end}}</button>
    </form>
  </div>
</div>
{{end}}

<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/movies/live");
  var strip = document.getElementById("latest-strip");
  var video = document.getElementById("hero-video");

  function send(msg) { if (ws.readyState === 1) ws.send(JSON.stringify(msg)); }
  function measure() {
    if (strip) send({type: "measure", scroll_width: strip.scrollWidth, client_width: strip.clientWidth});
  }

  ws.onopen = function () {
    if (strip) send({type: "pointer", active: strip.matches(":hover")});
    measure();
  };
  window.addEventListener("resize", measure);
  if (strip) {
    strip.addEventListener("mouseenter", function () { send({type: "hover", active: true}); });
    strip.addEventListener("mouseleave", function () { send({type: "hover", active: false}); });
  }
  if (video) {
    video.addEventListener("ended", function () { send({type: "ended"}); });
    video.addEventListener("click", function () { send({type: "toggle_play"}); });
  }

  document.querySelectorAll(".drop").forEach(function (zone) {
    var input = document.getElementById(zone.dataset.input);
    zone.addEventListener("dragover", function (e) { e.preventDefault(); zone.classList.add("over"); });
    zone.addEventListener("dragleave", function () { zone.classList.remove("over"); });
    zone.addEventListener("drop", function (e) {
      e.preventDefault();
      zone.classList.remove("over");
      var file = e.dataTransfer.files[0];
      if (!file || !file.type.startsWith(zone.dataset.accept)) return;
      var dt = new DataTransfer();
      dt.items.add(file);
      input.files = dt.files;
    });
  });

  ws.onmessage = function (e) {
    var ev = JSON.parse(e.data);
    if (ev.type === "scroll" && strip) {
      strip.scrollLeft = ev.position;
    } else if (ev.type === "trailer" && video && ev.movie) {
      video.src = ev.movie.trailer;
      document.getElementById("hero-title").textContent = ev.movie.title;
      document.getElementById("hero-description").textContent = ev.movie.description;
      document.getElementById("hero-view").action = "/movies/" + ev.movie.id + "/view";
      video.play();
    } else if (ev.type === "playback" && video) {
      if (ev.playing) { video.play(); } else { video.pause(); }
    }
  };
})();
</script>
</body>
</html>

{{define "card"}}
<div class="card">
  <img src="{{poster .Image}}" alt="{{.Title}}">
  <div class="meta">
    <strong>{{.Title}}</strong> <span>{{cardLabel .AvgRating}}</span>{{if .NoOfRatings}} <small>{{.NoOfRatings}} ratings</small>{{end}}
    <div>
      <form method="post" action="/movies/{{.ID}}/view"><button class="ghost" type="submit">View</button></form>
      <form method="post" action="/movies/{{.ID}}/edit"><button class="ghost" type="submit">Edit</button></form>
      <form method="post" action="/movies/{{.ID}}/delete"><button class="ghost" type="submit">Delete</button></form>
    </div>
  </div>
</div>
{{end}}`
