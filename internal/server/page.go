package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/site"
)

type pageData struct {
	Content  site.Content
	Sections []site.Section
	Projects []site.Project
	Filter   string
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

func registerPage(r chi.Router, content site.Content) {
	sections := site.Sections(content)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		filter := req.URL.Query().Get("filter")
		if filter == "" {
			filter = site.FilterAll
		}
		var buf bytes.Buffer
		err := pageTemplate.Execute(&buf, pageData{
			Content:  content,
			Sections: sections,
			Projects: site.FilterProjects(content.Projects, filter),
			Filter:   filter,
		})
		if err != nil {
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	})
}

const pageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>{{.Content.Owner.Name}}</title>
  <style>
    body { font-family: sans-serif; max-width: 60rem; margin: 0 auto; padding: 1rem; color: #222; }
    section { padding: 3rem 0; opacity: 0; transform: translateY(2rem); transition: all .6s ease-out; }
    section.revealed { opacity: 1; transform: none; }
    .filters a { margin-right: .5rem; }
    .filters a.active { font-weight: bold; }
    #toast { position: fixed; bottom: 1rem; right: 1rem; padding: .75rem 1rem; border-radius: .5rem; display: none; }
    #toast.default { display: block; background: #eef; }
    #toast.destructive { display: block; background: #fdd; }
  </style>
</head>
<body>
{{range .Sections}}{{if ne .ID "projects"}}{{if ne .ID "contact"}}
<section id="{{.ID}}" data-reveal>
  <h2>{{.Title}}</h2>
  {{range .Lines}}<p>{{.}}</p>
  {{end}}
</section>
{{end}}{{end}}{{if eq .ID "projects"}}
<section id="projects" data-reveal>
  <h2>{{.Title}}</h2>
  <div class="filters">{{range $.Content.ProjectFilters}}<a href="?filter={{.}}#projects"{{if eq . $.Filter}} class="active"{{end}}>{{.}}</a>{{end}}</div>
  {{range $.Projects}}<article>
    <h3>{{.Title}}</h3>
    <p>{{.Description}}</p>
    <p>{{range $i, $t := .Technologies}}{{if $i}}, {{end}}{{$t}}{{end}}</p>
  </article>
  {{else}}<p>No projects match this filter.</p>{{end}}
</section>
{{end}}{{if eq .ID "contact"}}
<section id="contact" data-reveal>
  <h2>{{.Title}}</h2>
  {{range .Lines}}<p>{{.}}</p>
  {{end}}
  <form id="contact-form">
    <input name="name" placeholder="Your Name"/>
    <input name="email" placeholder="Your Email"/>
    <textarea name="message" placeholder="Your Message"></textarea>
    <button type="submit">Send Message</button>
  </form>
</section>
{{end}}{{end}}
<div id="toast"></div>
<script>
(function () {
  var targets = document.querySelectorAll('[data-reveal]');
  if (!('IntersectionObserver' in window)) {
    targets.forEach(function (el) { el.classList.add('revealed'); });
  } else {
    var io = new IntersectionObserver(function (entries) {
      entries.forEach(function (e) {
        if (e.isIntersecting) { e.target.classList.add('revealed'); io.unobserve(e.target); }
      });
    });
    targets.forEach(function (el) { io.observe(el); });
  }

  var form = document.getElementById('contact-form');
  var toast = document.getElementById('toast');
  function notify(text, variant) {
    toast.textContent = text;
    toast.className = variant;
    setTimeout(function () { toast.className = ''; }, 4000);
  }
  form.addEventListener('submit', function (ev) {
    ev.preventDefault();
    var button = form.querySelector('button');
    if (button.disabled) { return; }
    var body = {
      name: form.elements.name.value, email: form.elements.email.value, message: form.elements.message.value
    };
    if (!body.name || !body.email || !body.message) {
      notify('Please fill in all fields', 'destructive'); return;
    }
    if (!/^[^\s@]+@[^\s@]+\.[^\s@]+$/.test(body.email)) {
      notify('Please enter a valid email address', 'destructive'); return;
    }
    button.disabled = true;
    button.textContent = 'Sending...';
    fetch('/api/contact', {
      method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body)
    }).then(function (res) {
      if (!res.ok) { throw new Error(res.status); }
      form.reset();
      notify("Thank you for your message! I'll get back to you soon.", 'default');
    }).catch(function () {
      notify('Failed to send message. Please try again.', 'destructive');
    }).finally(function () {
      button.disabled = false;
      button.textContent = 'Send Message';
    });
  });
})();
</script>
</body>
</html>`
