package site

import "html/template"

const navPartial = `{{define "nav"}}<nav class="sidebar">
  <a class="brand" href="{{.BasePath}}index.html">Species atlas</a>
  <input id="search" type="search" placeholder="Search species..." autocomplete="off">
  <ul id="search-results"></ul>
  {{- range .Families}}
  <h3>{{.Family}}</h3>
  <ul>
    {{- range .Entries}}
    <li><a href="{{$.BasePath}}{{.Href}}">{{.Name}}</a></li>
    {{- end}}
  </ul>
  {{- end}}
</nav>{{end}}`

const headPartial = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.BasePath}}style.css">
</head>{{end}}`

const searchScript = `{{define "search"}}<script>
(function () {
  var input = document.getElementById("search");
  var out = document.getElementById("search-results");
  var base = {{.BasePath}};
  var entries = [];
  fetch(base + "search-index.json").then(function (r) { return r.json(); }).then(function (d) { entries = d; });
  input.addEventListener("input", function () {
    var q = input.value.trim().toLowerCase();
    out.innerHTML = "";
    if (!q) return;
    entries.filter(function (e) {
      return e.scientific_name.toLowerCase().indexOf(q) === 0 ||
        (e.common_name || "").toLowerCase().indexOf(q) === 0;
    }).slice(0, 8).forEach(function (e) {
      var li = document.createElement("li");
      var a = document.createElement("a");
      a.href = base + e.href;
      a.textContent = e.scientific_name;
      li.appendChild(a);
      out.appendChild(li);
    });
  });
})();
</script>{{end}}`

var speciesTemplate = template.Must(template.New("species").Parse(headPartial + navPartial + searchScript + `{{template "head" .}}
<body>
{{template "nav" .}}
<main>
  <article>{{.Content}}</article>
  <section class="tree">
    <h2>Phylogenetic position</h2>
    {{- if .InTree}}
    <p class="lineage">{{range $i, $n := .Path}}{{if $i}} &rsaquo; {{end}}<span>{{$n}}</span>{{end}}</p>
    {{- else}}
    <p class="missing">Species not found in the phylogenetic tree.</p>
    {{- end}}
    <div class="tree-frame">{{.TreeSVG}}</div>
  </section>
</main>
{{template "search" .}}
</body>
</html>`))

var indexTemplate = template.Must(template.New("index").Parse(headPartial + navPartial + searchScript + `{{template "head" .}}
<body>
{{template "nav" .}}
<main>
  <h1>{{.Title}}</h1>
  <p>{{.Count}} species</p>
  <div class="tree-frame">{{.TreeSVG}}</div>
</main>
{{template "search" .}}
</body>
</html>`))

const cssContent = `* { box-sizing: border-box; }
body { margin: 0; display: flex; font-family: system-ui, -apple-system, sans-serif; color: #374151; background: #f9fafb; }
.sidebar { width: 280px; min-height: 100vh; padding: 1.5rem 1rem; background: #fff; border-right: 1px solid #e5e7eb; }
.sidebar .brand { display: block; font-weight: 700; font-size: 1.1rem; color: #10b981; text-decoration: none; margin-bottom: 1rem; }
.sidebar h3 { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #6b7280; margin: 1.25rem 0 0.25rem; }
.sidebar ul { list-style: none; padding: 0; margin: 0; }
.sidebar li a { display: block; padding: 0.2rem 0.4rem; color: #374151; font-style: italic; text-decoration: none; border-radius: 4px; }
.sidebar li a:hover { background: #ecfdf5; }
#search { width: 100%; padding: 0.4rem 0.6rem; border: 1px solid #d1d5db; border-radius: 6px; }
main { flex: 1; padding: 2rem 3rem; max-width: 1400px; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #e5e7eb; padding: 0.35rem 0.7rem; }
pre { background: #fff; border: 1px solid #e5e7eb; border-radius: 6px; padding: 0.75rem; overflow-x: auto; font-size: 0.8rem; }
.lineage span { font-style: italic; }
.lineage span:last-child { color: #ef4444; font-weight: 700; }
.missing { color: #ef4444; }
.tree-frame { overflow: auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; }
`
